// Package notify reports the outcome of finished deployments.
package notify

import (
	log "github.com/sirupsen/logrus"

	"github.com/nais/sitedeploy/pkg/deployment"
)

// Notifier is told exactly once about every deployment that finishes.
// Failure receives the error that ended polling, or nil if the provider
// reported the deployment as failed.
type Notifier interface {
	Success(d deployment.Deployment)
	Failure(d deployment.Deployment, err error)
}

var (
	_ Notifier = &LogNotifier{}
	_ Notifier = Multi{}
)

type LogNotifier struct{}

func (n *LogNotifier) Success(d deployment.Deployment) {
	log.WithFields(d.LogFields()).Infof("%c Deployment is live at %s", d.Status.StatusEmoji(), d.URL)
}

func (n *LogNotifier) Failure(d deployment.Deployment, err error) {
	logger := log.WithFields(d.LogFields())
	if err != nil {
		logger.Errorf("%c Deployment failed: %s", d.Status.StatusEmoji(), err)
		return
	}
	logger.Errorf("%c Deployment failed on the provider side", d.Status.StatusEmoji())
}

// Multi forwards notifications to every notifier in order.
type Multi []Notifier

func (m Multi) Success(d deployment.Deployment) {
	for _, n := range m {
		n.Success(d)
	}
}

func (m Multi) Failure(d deployment.Deployment, err error) {
	for _, n := range m {
		n.Failure(d, err)
	}
}
