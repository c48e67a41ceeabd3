package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chi_middleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nais/sitedeploy/pkg/binding"
	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/nais/sitedeploy/pkg/netlify"
	"github.com/nais/sitedeploy/pkg/sitedeployd/middleware"
)

// Submission includes a round trip to the provider with the whole archive.
var requestTimeout = time.Minute * 2

// Session is the part of session.Session exposed over HTTP.
type Session interface {
	Deploy(ctx context.Context, token, siteName string) (*netlify.Receipt, error)
	DeploymentState() (deployment.Deployment, bool)
	Subscribe(ctx context.Context, channel chan<- deployment.Deployment)
	Binding(ctx context.Context) (*binding.SiteBinding, error)
}

type Config struct {
	Session     Session
	MetricsPath string
	Registerer  prometheus.Registerer
}

func New(cfg Config) chi.Router {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	prometheusMiddleware := middleware.NewPrometheus(cfg.Registerer, "sitedeployd")

	handler := &Handler{
		Session: cfg.Session,
	}

	// Pre-populate request metrics
	for _, code := range DeployStatusCodes {
		prometheusMiddleware.Initialize("/api/v1/deploy", http.MethodPost, code)
	}

	// Base settings for all requests
	router := chi.NewRouter()
	router.Use(
		chi_middleware.RequestID,
		middleware.RequestLogger(),
		prometheusMiddleware.Handler,
		chi_middleware.StripSlashes,
	)

	// Mount /metrics endpoint with no authentication
	router.Get(cfg.MetricsPath, promhttp.Handler().ServeHTTP)

	router.Route("/api/v1", func(r chi.Router) {
		// Event streams stay open for as long as the client wants.
		r.Get("/deployment/events", handler.Events)

		r.Group(func(r chi.Router) {
			r.Use(chi_middleware.Timeout(requestTimeout))

			r.Get("/deployment", handler.Deployment)
			r.Get("/binding", handler.Binding)
			r.With(chi_middleware.AllowContentType("application/json")).Post("/deploy", handler.Deploy)
		})
	})

	return router
}
