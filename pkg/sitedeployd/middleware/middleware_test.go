package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/nais/sitedeploy/pkg/sitedeployd/middleware"
)

func TestPrometheusCountsByRoutePattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := middleware.NewPrometheus(registry, "test")

	router := chi.NewRouter()
	router.Use(m.Handler, middleware.RequestLogger())
	router.Get("/sites/{site}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/sites/a", "/sites/b", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := registry.Gather()
	assert.NoError(t, err)

	counts := make(map[string]float64)
	for _, family := range families {
		if family.GetName() != "requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string)
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			counts[labels["path"]+" "+labels["code"]] = metric.GetCounter().GetValue()
		}
	}

	assert.Equal(t, float64(2), counts["/sites/{site} 418"])
	assert.Equal(t, float64(1), counts["unmatched 404"])
}
