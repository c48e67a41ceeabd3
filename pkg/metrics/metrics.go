package metrics

import (
	"strconv"
	"time"

	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "sitedeploy"

	StatusOK    = "ok"
	StatusError = "error"

	OperationSubmit = "submit"
	OperationStatus = "status"

	LabelStatus           = "status"
	LabelStatusCode       = "status_code"
	LabelOperation        = "operation"
	LabelDeploymentStatus = "deployment_status"
)

// ProviderRequest counts a request to the hosting provider.
// A status code of zero means the request never got a response.
func ProviderRequest(operation string, statusCode int) {
	providerRequests.With(prometheus.Labels{
		LabelOperation:  operation,
		LabelStatusCode: strconv.Itoa(statusCode),
	}).Inc()
}

func ArchiveSize(bytes int) {
	archiveBytes.Observe(float64(bytes))
}

func PollerStarted() {
	activePollers.Inc()
}

func PollerStopped() {
	activePollers.Dec()
}

// StateTransition records a written deployment status. For finished
// deployments, the time since creation is reported as lead time.
func StateTransition(d deployment.Deployment) {
	labels := prometheus.Labels{
		LabelDeploymentStatus: d.Status.String(),
	}
	stateTransitions.With(labels).Inc()

	if d.Status.Finished() && !d.Created.IsZero() {
		leadTime.With(labels).Observe(time.Since(d.Created).Seconds())
	}
}

func statusLabel(err error) string {
	if err == nil {
		return StatusOK
	}
	return StatusError
}

func DatabaseQuery(t time.Time, err error) {
	elapsed := time.Since(t)
	databaseQueries.With(prometheus.Labels{
		LabelStatus: statusLabel(err),
	}).Observe(elapsed.Seconds())
}

var (
	providerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "provider_requests",
		Help:      "number of requests made to the hosting provider",
		Namespace: namespace,
	},
		[]string{
			LabelOperation,
			LabelStatusCode,
		},
	)

	stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:      "state_transitions",
		Help:      "deployment status transitions",
		Namespace: namespace,
	},
		[]string{
			LabelDeploymentStatus,
		},
	)

	activePollers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name:      "active_pollers",
		Help:      "number of status pollers currently running",
		Namespace: namespace,
	})

	archiveBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:      "archive_bytes",
		Help:      "size of uploaded deployment archives",
		Namespace: namespace,
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
	})

	leadTime = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Name:      "lead_time_seconds",
		Help:      "time from accepted submission until the deployment finished",
		Namespace: namespace,
	},
		[]string{
			LabelDeploymentStatus,
		},
	)

	databaseQueries = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:      "database_queries",
		Help:      "time to execute database queries",
		Namespace: namespace,
		Buckets:   prometheus.LinearBuckets(0.005, 0.005, 20),
	},
		[]string{
			LabelStatus,
		},
	)
)

func init() {
	prometheus.MustRegister(providerRequests)
	prometheus.MustRegister(stateTransitions)
	prometheus.MustRegister(activePollers)
	prometheus.MustRegister(archiveBytes)
	prometheus.MustRegister(leadTime)
	prometheus.MustRegister(databaseQueries)
}
