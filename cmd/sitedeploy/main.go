package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"

	"github.com/nais/sitedeploy/pkg/archive"
	"github.com/nais/sitedeploy/pkg/binding"
	"github.com/nais/sitedeploy/pkg/credentials"
	"github.com/nais/sitedeploy/pkg/deployclient"
	"github.com/nais/sitedeploy/pkg/netlify"
	"github.com/nais/sitedeploy/pkg/notify"
	"github.com/nais/sitedeploy/pkg/session"
	"github.com/nais/sitedeploy/pkg/telemetry"
	"github.com/nais/sitedeploy/pkg/version"
)

func main() {
	err := run()
	if err == nil {
		return
	}
	code := deployclient.ErrorExitCode(err)
	if code == deployclient.ExitInvocationFailure {
		flag.Usage()
	}
	log.Errorf("fatal: %s", err)
	os.Exit(int(code))
}

func run() error {
	// Configuration and context
	cfg := deployclient.NewConfig()
	deployclient.InitConfig(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	// Logging
	deployclient.SetupLogging(*cfg)

	// Welcome
	log.Infof("sitedeploy %s", version.Version())
	ts, err := version.BuildTime()
	if err == nil {
		log.Infof("This version was built %s", ts.Local())
	}

	err = cfg.Validate()
	if err != nil {
		return deployclient.ErrorWrap(deployclient.ExitInvocationFailure, err)
	}

	if len(cfg.OpenTelemetryCollectorURL) > 0 {
		tracerProvider, err := telemetry.New(ctx, "sitedeploy", cfg.OpenTelemetryCollectorURL)
		if err != nil {
			log.Warnf("Tracing disabled: %s", err)
		} else {
			defer func() {
				err := tracerProvider.Shutdown(context.Background())
				if err != nil {
					log.Error(err)
				}
			}()
		}
	}

	fs := afero.NewOsFs()
	files := archive.NewFsProvider(fs, cfg.Directory, cfg.Excludes()...)
	bindings := binding.NewFileStore(fs, cfg.StateDir)
	creds := credentials.NewFileStore(fs, cfg.CredentialsFile)

	notifiers := notify.Multi{&notify.LogNotifier{}}
	if summary := notify.NewStepSummaryNotifier(); summary != nil {
		notifiers = append(notifiers, summary)
	}

	s := session.New(session.Config{
		Files:        files,
		Client:       netlify.New(cfg.APIURL, nil, bindings, creds),
		Bindings:     bindings,
		Notifier:     notifiers,
		PollInterval: cfg.PollInterval,
	})
	defer s.Close()

	d := &deployclient.Deployer{
		Session:     s,
		Credentials: creds,
		Files:       files,
	}

	return d.Deploy(ctx, cfg)
}
