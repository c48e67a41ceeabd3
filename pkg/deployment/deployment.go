package deployment

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Deployment is the observable record of the current deployment.
// It is not persisted.
type Deployment struct {
	AttemptID string    `json:"attemptId"`
	SiteID    string    `json:"siteId"`
	DeployID  string    `json:"deployId"`
	URL       string    `json:"url"`
	Status    Status    `json:"status"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
}

func (d Deployment) LogFields() log.Fields {
	return log.Fields{
		"attempt_id": d.AttemptID,
		"site_id":    d.SiteID,
		"deploy_id":  d.DeployID,
		"status":     d.Status,
	}
}
