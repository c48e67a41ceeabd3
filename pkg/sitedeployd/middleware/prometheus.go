// Adapted from https://github.com/766b/chi-prometheus.

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	chi_middleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var defaultBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

const (
	reqsName    = "requests_total"
	latencyName = "request_duration_ms"
)

// Prometheus exposes metrics for the number of requests and their latency,
// partitioned by status code, method and route pattern.
type Prometheus struct {
	reqs    *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewPrometheus registers request metrics with registerer.
func NewPrometheus(registerer prometheus.Registerer, name string, buckets ...float64) *Prometheus {
	m := &Prometheus{}
	m.reqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        reqsName,
			Help:        "How many HTTP requests processed, partitioned by status code, method and HTTP path.",
			ConstLabels: prometheus.Labels{"service": name},
		},
		[]string{"code", "method", "path"},
	)

	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	m.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        latencyName,
		Help:        "How long it took to process the request, partitioned by status code, method and HTTP path.",
		ConstLabels: prometheus.Labels{"service": name},
		Buckets:     buckets,
	},
		[]string{"code", "method", "path"},
	)

	registerer.MustRegister(m.reqs, m.latency)

	return m
}

// Initialize creates the series for a path, method and status code, so that they are exported before the first request.
func (m *Prometheus) Initialize(path, method string, code int) {
	m.reqs.WithLabelValues(strconv.Itoa(code), method, path)
}

func (m *Prometheus) Handler(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chi_middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		statusCode := strconv.Itoa(ww.Status())
		duration := time.Since(start)
		path := routePattern(r)
		m.reqs.WithLabelValues(statusCode, r.Method, path).Inc()
		m.latency.WithLabelValues(statusCode, r.Method, path).Observe(float64(duration.Milliseconds()))
	}
	return http.HandlerFunc(fn)
}

// Unmatched paths are collapsed to keep label cardinality bounded.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := rctx.RoutePattern()
	if len(pattern) == 0 {
		return "unmatched"
	}
	return pattern
}
