package config

import (
	"time"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nais/sitedeploy/pkg/conftools"
	"github.com/nais/sitedeploy/pkg/logging"
	"github.com/nais/sitedeploy/pkg/netlify"
	"github.com/nais/sitedeploy/pkg/poller"
)

type Config struct {
	APIURL                    string        `json:"api-url"`
	CredentialsFile           string        `json:"credentials-file"`
	DatabaseConnectTimeout    time.Duration `json:"database-connect-timeout"`
	DatabaseEncryptionKey     string        `json:"database-encryption-key"`
	DatabaseURL               string        `json:"database-url"`
	ListenAddress             string        `json:"listen-address"`
	LogFormat                 string        `json:"log-format"`
	LogLevel                  string        `json:"log-level"`
	MetricsPath               string        `json:"metrics-path"`
	OpenTelemetryCollectorURL string        `json:"otel-collector-endpoint"`
	PollInterval              time.Duration `json:"poll-interval"`
	ProjectDir                string        `json:"project-dir"`
	ProjectName               string        `json:"project-name"`
	StateDir                  string        `json:"state-dir"`
}

const (
	APIURL                    = "api-url"
	CredentialsFile           = "credentials-file"
	DatabaseConnectTimeout    = "database-connect-timeout"
	DatabaseEncryptionKey     = "database-encryption-key"
	DatabaseUrl               = "database-url"
	ListenAddress             = "listen-address"
	LogFormat                 = "log-format"
	LogLevel                  = "log-level"
	MetricsPath               = "metrics-path"
	OpenTelemetryCollectorURL = "otel-collector-endpoint"
	PollInterval              = "poll-interval"
	ProjectDir                = "project-dir"
	ProjectName               = "project-name"
	StateDir                  = "state-dir"
)

// Bind conventional environment variables in addition to the SITEDEPLOYD_ prefixed ones.
func bindEnvironment() {
	viper.BindEnv(DatabaseUrl, "DATABASE_URL")
	viper.BindEnv(OpenTelemetryCollectorURL, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func Initialize() *Config {
	conftools.Initialize("sitedeployd")
	bindEnvironment()

	flag.String(ListenAddress, "127.0.0.1:8080", "IP:PORT")
	flag.String(LogFormat, logging.FormatText, "Log format, either 'json' or 'text'.")
	flag.String(LogLevel, "info", "Logging verbosity level.")
	flag.String(MetricsPath, "/metrics", "HTTP endpoint for exposed metrics.")

	flag.String(ProjectDir, ".", "Directory containing the files to deploy.")
	flag.String(ProjectName, "default", "Name identifying the project in the database.")
	flag.String(APIURL, netlify.DefaultBaseURL, "Base URL of the Netlify API.")
	flag.Duration(PollInterval, poller.DefaultInterval, "Delay between deployment status queries.")

	flag.String(DatabaseUrl, "", "PostgreSQL connection information. Site binding and token are kept on disk if empty.")
	flag.String(DatabaseEncryptionKey, "", "Hex encoded key used to encrypt tokens at rest in PostgreSQL database.")
	flag.Duration(DatabaseConnectTimeout, time.Minute*5, "How long to try the initial database connection.")

	flag.String(StateDir, "", "Directory holding the site binding when not using a database. Defaults to .sitedeploy in the project directory.")
	flag.String(CredentialsFile, "", "File holding the API token when not using a database. Defaults to the user configuration directory.")

	flag.String(OpenTelemetryCollectorURL, "", "OpenTelemetry collector endpoint. Tracing is disabled if empty.")

	return &Config{}
}

// Secrets are redacted when printing the configuration.
func Secrets() []string {
	return []string{
		DatabaseEncryptionKey,
		DatabaseUrl,
	}
}
