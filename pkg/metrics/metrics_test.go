package metrics_test

import (
	"testing"
	"time"

	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/nais/sitedeploy/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func gathered(t *testing.T, name string) bool {
	families, err := prometheus.DefaultGatherer.Gather()
	assert.NoError(t, err)
	for _, family := range families {
		if family.GetName() == name {
			return true
		}
	}
	return false
}

func TestMetricsAreRegistered(t *testing.T) {
	metrics.ProviderRequest(metrics.OperationSubmit, 200)
	metrics.ArchiveSize(2048)
	metrics.StateTransition(deployment.Deployment{
		Status:  deployment.StatusReady,
		Created: time.Now().Add(-time.Minute),
	})
	metrics.DatabaseQuery(time.Now(), nil)

	for _, name := range []string{
		"sitedeploy_provider_requests",
		"sitedeploy_archive_bytes",
		"sitedeploy_state_transitions",
		"sitedeploy_lead_time_seconds",
		"sitedeploy_database_queries",
		"sitedeploy_active_pollers",
	} {
		assert.True(t, gathered(t, name), name)
	}
}
