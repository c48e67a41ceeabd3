// Package deployclient implements the sitedeploy command line client.
package deployclient

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	ocodes "go.opentelemetry.io/otel/codes"

	"github.com/nais/sitedeploy/pkg/archive"
	"github.com/nais/sitedeploy/pkg/binding"
	"github.com/nais/sitedeploy/pkg/credentials"
	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/nais/sitedeploy/pkg/session"
	"github.com/nais/sitedeploy/pkg/telemetry"
)

type Deployer struct {
	Session     *session.Session
	Credentials credentials.Store
	Files       archive.Provider
}

// Deploy submits the project and, if requested, waits for the deployment to finish.
// The returned error carries an exit code; see ErrorExitCode.
func (d *Deployer) Deploy(ctx context.Context, cfg *Config) error {
	ctx, span := telemetry.Tracer().Start(ctx, "Deploy site and wait for completion")
	defer span.End()

	if cfg.DryRun {
		return d.dryRun()
	}

	token := d.token(ctx, cfg)
	siteName := d.siteName(ctx, cfg)

	log.Infof("Sending deployment to %s...", cfg.APIURL)

	receipt, err := d.Session.Deploy(ctx, token, siteName)
	if err != nil {
		span.SetStatus(ocodes.Error, err.Error())
		span.RecordError(err)
		return deployError(err)
	}

	log.Infof("Deployment information:")
	log.Infof("---")
	log.Infof("site id......: %s", receipt.SiteID)
	log.Infof("deploy id....: %s", receipt.ID)
	log.Infof("url..........: %s", receipt.DeployURL)
	log.Infof("trace id.....: %s", telemetry.TraceID(ctx))
	log.Info("---")

	if !cfg.Wait {
		return nil
	}

	log.Infof("Waiting for deployment to complete...")

	err = d.wait(ctx, receipt.ID, cfg.PollInterval)
	if err != nil {
		span.SetStatus(ocodes.Error, err.Error())
	}
	return err
}

// wait returns when deployID has finished or ctx is done. State changes are
// observed through a subscription, with a periodic look at the state in case
// an update was missed.
func (d *Deployer) wait(ctx context.Context, deployID string, interval time.Duration) error {
	updates := make(chan deployment.Deployment, 16)
	subscriptionCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go d.Session.Subscribe(subscriptionCtx, updates)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		current, ok := d.Session.DeploymentState()
		if !ok || current.DeployID != deployID {
			return Errorf(ExitInternalError, "deployment %s is no longer tracked", deployID)
		}
		if current.Status.Finished() {
			logDeploymentStatus(current)
			return ErrorStatus(current)
		}

		select {
		case <-ctx.Done():
			return Errorf(ExitTimeout, "deployment timed out: %w", ctx.Err())
		case update, ok := <-updates:
			if ok && update.DeployID == deployID && !update.Status.Finished() {
				logDeploymentStatus(update)
			}
		case <-ticker.C:
		}
	}
}

// token prefers the configured token over the stored one.
func (d *Deployer) token(ctx context.Context, cfg *Config) string {
	if len(cfg.Token) > 0 {
		return cfg.Token
	}

	token, err := d.Credentials.Token(ctx)
	switch {
	case err == nil:
		log.Infof("Using stored API token")
	case errors.Is(err, credentials.ErrNotFound):
	default:
		log.Warnf("Unable to read stored API token: %s", err)
	}
	return token
}

// siteName falls back to the name of the bound site.
func (d *Deployer) siteName(ctx context.Context, cfg *Config) string {
	if len(cfg.SiteName) > 0 {
		return cfg.SiteName
	}

	b, err := d.Session.Binding(ctx)
	switch {
	case err == nil:
		log.Infof("Deploying to bound site %q", b.SiteName)
		return b.SiteName
	case binding.IsErrNotFound(err):
	default:
		log.Warnf("Unable to read site binding: %s", err)
	}
	return ""
}

func (d *Deployer) dryRun() error {
	files, err := d.Files.Files()
	if err != nil {
		return ErrorWrap(ExitInternalError, &archive.PackagingError{Err: err})
	}

	a, err := archive.Pack(files)
	if err != nil {
		return ErrorWrap(ExitInternalError, err)
	}

	for _, entry := range a.Entries {
		log.Infof("package: %s", entry)
	}
	for _, entry := range a.Skipped {
		log.Warnf("skip: %s", entry)
	}
	log.Infof("Dry run: %d files would be deployed (%d bytes)", len(a.Entries), a.Len())

	return nil
}
