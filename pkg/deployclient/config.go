package deployclient

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/nais/sitedeploy/pkg/archive"
	"github.com/nais/sitedeploy/pkg/credentials"
	"github.com/nais/sitedeploy/pkg/netlify"
	"github.com/nais/sitedeploy/pkg/poller"
)

const (
	DefaultDeployTimeout = time.Minute * 10
	DefaultDirectory     = "."
	StateDirName         = ".sitedeploy"
)

var (
	ErrDirectoryRequired   = errors.New("project directory required")
	ErrAPIURLRequired      = errors.New("API URL required")
	ErrInvalidPollInterval = errors.New("poll interval must be positive")
	ErrInvalidTimeout      = errors.New("timeout must be positive")
)

type Config struct {
	Actions                   bool
	APIURL                    string
	CredentialsFile           string
	Directory                 string
	DryRun                    bool
	OpenTelemetryCollectorURL string
	PollInterval              time.Duration
	Quiet                     bool
	SiteName                  string
	StateDir                  string
	Timeout                   time.Duration
	Token                     string
	Wait                      bool
}

func InitConfig(cfg *Config) {
	flag.BoolVar(&cfg.Actions, "actions", getEnvBool("ACTIONS", false), "Use GitHub Actions compatible error and warning messages. (env ACTIONS)")
	flag.StringVar(&cfg.APIURL, "api-url", getEnv("API_URL", netlify.DefaultBaseURL), "Base URL of the Netlify API. (env API_URL)")
	flag.StringVar(&cfg.CredentialsFile, "credentials-file", os.Getenv("CREDENTIALS_FILE"), "File where the API token is stored between runs. (env CREDENTIALS_FILE)")
	flag.StringVar(&cfg.Directory, "dir", getEnv("DIR", DefaultDirectory), "Directory containing the files to deploy. (env DIR)")
	flag.BoolVar(&cfg.DryRun, "dry-run", getEnvBool("DRY_RUN", false), "Package files, but don't actually make any requests. (env DRY_RUN)")
	flag.StringVar(&cfg.OpenTelemetryCollectorURL, "otel-collector-endpoint", os.Getenv("OTEL_COLLECTOR_ENDPOINT"), "OpenTelemetry collector endpoint. Tracing is disabled if empty. (env OTEL_COLLECTOR_ENDPOINT)")
	flag.DurationVar(&cfg.PollInterval, "poll-interval", getEnvDuration("POLL_INTERVAL", poller.DefaultInterval), "Delay between deployment status queries. (env POLL_INTERVAL)")
	flag.BoolVar(&cfg.Quiet, "quiet", getEnvBool("QUIET", false), "Suppress printing of informational messages except errors. (env QUIET)")
	flag.StringVar(&cfg.SiteName, "site-name", os.Getenv("SITE_NAME"), "Name of the site to deploy to. Defaults to the site the project is bound to. (env SITE_NAME)")
	flag.StringVar(&cfg.StateDir, "state-dir", os.Getenv("STATE_DIR"), "Directory holding the site binding. Defaults to .sitedeploy in the project directory. (env STATE_DIR)")
	flag.DurationVar(&cfg.Timeout, "timeout", getEnvDuration("TIMEOUT", DefaultDeployTimeout), "Time to wait for successful deployment. (env TIMEOUT)")
	flag.StringVar(&cfg.Token, "token", os.Getenv("NETLIFY_AUTH_TOKEN"), "Netlify API token. Defaults to the stored token. (env NETLIFY_AUTH_TOKEN)")
	flag.BoolVar(&cfg.Wait, "wait", getEnvBool("WAIT", false), "Block until deployment reaches final state (ready, error). (env WAIT)")

	flag.Parse()

	cfg.ApplyDefaults()
}

// NewConfig returns a configuration with default values.
// Values will be resolved with the following precedence: flags > environment variables > default values.
func NewConfig() *Config {
	return &Config{
		APIURL:       netlify.DefaultBaseURL,
		Directory:    DefaultDirectory,
		PollInterval: poller.DefaultInterval,
		Timeout:      DefaultDeployTimeout,
	}
}

// ApplyDefaults fills in paths that depend on other settings.
func (cfg *Config) ApplyDefaults() {
	if len(cfg.StateDir) == 0 {
		cfg.StateDir = filepath.Join(cfg.Directory, StateDirName)
	}
	if len(cfg.CredentialsFile) == 0 {
		path, err := credentials.DefaultPath()
		if err == nil {
			cfg.CredentialsFile = path
		}
	}
}

// Excludes lists paths in the project directory that are never deployed.
func (cfg *Config) Excludes() []string {
	excludes := append([]string{}, archive.DefaultExcludes...)
	rel, err := filepath.Rel(cfg.Directory, cfg.StateDir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return excludes
	}
	return append(excludes, filepath.ToSlash(rel))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		duration, err := time.ParseDuration(value)
		if err == nil {
			return duration
		}
	}
	return fallback
}

func getEnvBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}

	return b
}

// Validate checks settings that can be checked without touching disk or network.
// Token and site name may be resolved from stored state, and are checked when deploying.
func (cfg *Config) Validate() error {
	if len(cfg.Directory) == 0 {
		return ErrDirectoryRequired
	}

	if len(cfg.APIURL) == 0 {
		return ErrAPIURLRequired
	}

	if cfg.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}

	if cfg.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	return nil
}
