// Package poller drives a submitted deployment to a terminal status.
package poller

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/nais/sitedeploy/pkg/metrics"
	"github.com/nais/sitedeploy/pkg/netlify"
	"github.com/nais/sitedeploy/pkg/notify"
)

const DefaultInterval = 5 * time.Second

type StatusQuerier interface {
	QueryStatus(ctx context.Context, token, siteID, deployID string) (*netlify.Receipt, error)
}

type Poller struct {
	Client   StatusQuerier
	State    *deployment.State
	Notifier notify.Notifier
	Interval time.Duration
}

// Run queries the status of d until it finishes. The first query is issued
// immediately; every following query waits Interval after the previous
// response arrived.
//
// A failed query is terminal. Run also returns without writing when ctx is
// done, or as soon as a newer generation has taken over the state.
func (p *Poller) Run(ctx context.Context, token string, generation uint64, d deployment.Deployment) {
	metrics.PollerStarted()
	defer metrics.PollerStopped()

	logger := log.WithFields(d.LogFields()).WithField("generation", generation)
	logger.Debugf("Polling deployment status every %s", p.interval())

	for tick := 0; ; tick++ {
		if tick > 0 {
			select {
			case <-ctx.Done():
				logger.Debugf("Polling cancelled: %s", ctx.Err())
				return
			case <-time.After(p.interval()):
			}
		}

		receipt, err := p.Client.QueryStatus(ctx, token, d.SiteID, d.DeployID)
		if ctx.Err() != nil {
			logger.Debugf("Polling cancelled: %s", ctx.Err())
			return
		}

		if err != nil {
			logger.Errorf("Status query failed: %s", err)
			p.finish(generation, deployment.StatusError, err)
			return
		}

		status := receipt.Status()
		if status.Finished() {
			p.finish(generation, status, nil)
			return
		}

		// Non-terminal states are recorded as building.
		updated, written := p.State.Update(generation, deployment.StatusBuilding)
		if written {
			metrics.StateTransition(updated)
		}
		if p.State.Generation() != generation {
			logger.Debugf("Deployment superseded; polling stopped")
			return
		}
		if updated.Status.Finished() {
			return
		}

		logger.Debugf("Deployment is %s", receipt.State)
	}
}

// finish writes a terminal status and notifies about it, unless the write is stale.
func (p *Poller) finish(generation uint64, status deployment.Status, err error) {
	updated, written := p.State.Update(generation, status)
	if !written {
		log.WithField("generation", generation).Debugf("Terminal status %q not recorded", status)
		return
	}

	metrics.StateTransition(updated)
	log.WithFields(updated.LogFields()).Infof("Deployment finished with status %s", updated.Status)

	if p.Notifier == nil {
		return
	}
	if status == deployment.StatusReady {
		p.Notifier.Success(updated)
	} else {
		p.Notifier.Failure(updated, err)
	}
}

func (p *Poller) interval() time.Duration {
	if p.Interval <= 0 {
		return DefaultInterval
	}
	return p.Interval
}
