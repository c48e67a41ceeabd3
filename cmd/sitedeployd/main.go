package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/nais/sitedeploy/pkg/archive"
	"github.com/nais/sitedeploy/pkg/binding"
	"github.com/nais/sitedeploy/pkg/conftools"
	"github.com/nais/sitedeploy/pkg/credentials"
	"github.com/nais/sitedeploy/pkg/database"
	"github.com/nais/sitedeploy/pkg/logging"
	"github.com/nais/sitedeploy/pkg/netlify"
	"github.com/nais/sitedeploy/pkg/notify"
	"github.com/nais/sitedeploy/pkg/session"
	"github.com/nais/sitedeploy/pkg/sitedeployd/api"
	"github.com/nais/sitedeploy/pkg/sitedeployd/config"
	"github.com/nais/sitedeploy/pkg/telemetry"
	"github.com/nais/sitedeploy/pkg/version"
)

const (
	databaseConnectBackoffInterval = 3 * time.Second
	stateDirName                   = ".sitedeploy"
	shutdownTimeout                = 10 * time.Second
)

func run() error {
	cfg := config.Initialize()
	err := conftools.Load(cfg)
	if err != nil {
		return err
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}

	// Welcome
	log.Infof("sitedeployd %s", version.Version())
	ts, err := version.BuildTime()
	if err == nil {
		log.Infof("This version was built %s", ts.Local())
	}

	for _, line := range conftools.Format(config.Secrets()) {
		log.Info(line)
	}

	if len(cfg.OpenTelemetryCollectorURL) > 0 {
		tracerProvider, err := telemetry.New(context.Background(), "sitedeployd", cfg.OpenTelemetryCollectorURL)
		if err != nil {
			return fmt.Errorf("set up tracing: %w", err)
		}
		defer tracerProvider.Shutdown(context.Background())
	}

	fs := afero.NewOsFs()
	excludes := append([]string{}, archive.DefaultExcludes...)

	var bindings binding.Store
	var creds credentials.Store

	if len(cfg.DatabaseURL) > 0 {
		db, err := connectDatabase(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		bindings = db.Bindings(cfg.ProjectName)
		creds = db.Credentials(cfg.ProjectName)
		log.Infof("Site binding and token for project %q are kept in the database", cfg.ProjectName)
	} else {
		stateDir := cfg.StateDir
		if len(stateDir) == 0 {
			stateDir = filepath.Join(cfg.ProjectDir, stateDirName)
		}
		credentialsFile := cfg.CredentialsFile
		if len(credentialsFile) == 0 {
			credentialsFile, err = credentials.DefaultPath()
			if err != nil {
				return fmt.Errorf("credentials file: %w", err)
			}
		}
		if rel, err := filepath.Rel(cfg.ProjectDir, stateDir); err == nil {
			excludes = append(excludes, filepath.ToSlash(rel))
		}

		bindings = binding.NewFileStore(fs, stateDir)
		creds = credentials.NewFileStore(fs, credentialsFile)
		log.Infof("Site binding is kept in %s", stateDir)
	}

	s := session.New(session.Config{
		Files:        archive.NewFsProvider(fs, cfg.ProjectDir, excludes...),
		Client:       netlify.New(cfg.APIURL, nil, bindings, creds),
		Bindings:     bindings,
		Notifier:     &notify.LogNotifier{},
		PollInterval: cfg.PollInterval,
	})
	defer s.Close()

	router := api.New(api.Config{
		Session:     s,
		MetricsPath: cfg.MetricsPath,
	})

	server := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: router,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Error(err)
		}
	}()

	log.Infof("Ready to accept connections on %s", cfg.ListenAddress)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals

	log.Infof("Received signal %s (%d), exiting...", sig, sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}

func connectDatabase(cfg *config.Config) (*database.Database, error) {
	dbEncryptionKey, err := hex.DecodeString(cfg.DatabaseEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("database encryption key must be a hex encoded string")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DatabaseConnectTimeout)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL, dbEncryptionKey, databaseConnectBackoffInterval)
	if err != nil {
		return nil, err
	}

	err = db.Migrate(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %s", err)
	}

	return db, nil
}

func main() {
	err := run()
	if err != nil {
		log.Errorf("Fatal error: %s", err)
		os.Exit(1)
	}
}
