// Package session orchestrates deployments for a single project.
//
// A Session is constructed once per project and owns the observable
// deployment state. Collaborators read and observe state through it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/nais/sitedeploy/pkg/archive"
	"github.com/nais/sitedeploy/pkg/binding"
	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/nais/sitedeploy/pkg/metrics"
	"github.com/nais/sitedeploy/pkg/netlify"
	"github.com/nais/sitedeploy/pkg/notify"
	"github.com/nais/sitedeploy/pkg/poller"
	"github.com/nais/sitedeploy/pkg/telemetry"
)

var ErrConflict = errors.New("a deployment is already being submitted")

// ConfigurationError is returned before any network call when a required
// deploy parameter is missing.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s must be specified", e.Field)
}

func IsConfigurationError(err error) bool {
	cfgErr := &ConfigurationError{}
	return errors.As(err, &cfgErr)
}

type Config struct {
	Files        archive.Provider
	Client       netlify.DeployClient
	Bindings     binding.Store
	Notifier     notify.Notifier
	PollInterval time.Duration
}

type Session struct {
	files    archive.Provider
	client   netlify.DeployClient
	bindings binding.Store
	state    *deployment.State
	poller   *poller.Poller

	submitting atomic.Bool

	lock       sync.Mutex
	cancelPoll context.CancelFunc
	polling    sync.WaitGroup
}

func New(cfg Config) *Session {
	state := deployment.NewState()
	return &Session{
		files:    cfg.Files,
		client:   cfg.Client,
		bindings: cfg.Bindings,
		state:    state,
		poller: &poller.Poller{
			Client:   cfg.Client,
			State:    state,
			Notifier: cfg.Notifier,
			Interval: cfg.PollInterval,
		},
	}
}

// Deploy packages the project, submits it and starts polling its status.
// It returns as soon as the provider has accepted the submission; the
// outcome of the deployment is observed through the deployment state.
//
// Only one submission may be in flight at a time; others fail with ErrConflict.
// Starting a deployment stops polling of the previous one.
func (s *Session) Deploy(ctx context.Context, token, siteName string) (*netlify.Receipt, error) {
	if len(token) == 0 {
		return nil, &ConfigurationError{Field: "token"}
	}
	if len(siteName) == 0 {
		return nil, &ConfigurationError{Field: "site name"}
	}

	if !s.submitting.CompareAndSwap(false, true) {
		return nil, ErrConflict
	}
	defer s.submitting.Store(false)

	ctx, span := telemetry.Tracer().Start(ctx, "Deploy")
	defer span.End()

	files, err := s.files.Files()
	if err != nil {
		return nil, &archive.PackagingError{Err: fmt.Errorf("read project files: %w", err)}
	}

	a, err := archive.Pack(files)
	if err != nil {
		return nil, err
	}
	log.Infof("Packaged %d files (%d bytes)", len(a.Entries), a.Len())
	if len(a.Skipped) > 0 {
		log.Warnf("Skipped %d files without text content", len(a.Skipped))
	}

	receipt, err := s.client.Submit(ctx, token, siteName, a)
	if err != nil {
		return nil, err
	}

	d := deployment.Deployment{
		AttemptID: uuid.New().String(),
		SiteID:    receipt.SiteID,
		DeployID:  receipt.ID,
		URL:       receipt.DeployURL,
		Status:    deployment.StatusBuilding,
		Created:   time.Now(),
	}
	telemetry.AddDeploymentSpanAttributes(span, d)

	s.lock.Lock()
	if s.cancelPoll != nil {
		s.cancelPoll()
	}
	generation := s.state.Begin(d)
	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelPoll = cancel
	s.polling.Add(1)
	s.lock.Unlock()

	metrics.StateTransition(d)
	log.WithFields(d.LogFields()).WithField("generation", generation).Infof("Deployment submitted; building at %s", d.URL)

	go func() {
		defer s.polling.Done()
		defer cancel()
		s.poller.Run(pollCtx, token, generation, d)
	}()

	return receipt, nil
}

// DeploymentState returns the current deployment, and false if there is none.
func (s *Session) DeploymentState() (deployment.Deployment, bool) {
	return s.state.Get()
}

// Subscribe sends every deployment state change to channel until ctx is done.
// See deployment.State.Subscribe.
func (s *Session) Subscribe(ctx context.Context, channel chan<- deployment.Deployment) {
	s.state.Subscribe(ctx, channel)
}

// Subscribers returns the number of active state subscriptions.
func (s *Session) Subscribers() int {
	return s.state.Subscribers()
}

// Binding returns the project's site binding, or binding.ErrNotFound.
func (s *Session) Binding(ctx context.Context) (*binding.SiteBinding, error) {
	return s.bindings.Binding(ctx)
}

// Wait blocks until no poller is running.
func (s *Session) Wait() {
	s.polling.Wait()
}

// Close stops polling and waits for the poller to exit.
func (s *Session) Close() {
	s.lock.Lock()
	if s.cancelPoll != nil {
		s.cancelPoll()
	}
	s.lock.Unlock()
	s.Wait()
}
