package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joinportal/intake/internal/handler"
	"github.com/joinportal/intake/internal/metrics"
	"github.com/joinportal/intake/internal/middleware"
	"github.com/joinportal/intake/internal/ratelimit"
)

// SubmitPath is the public intake endpoint.
const SubmitPath = "/submit-application"

// RouterDeps holds everything the HTTP surface is composed from.
type RouterDeps struct {
	Logger       *slog.Logger
	Applications *handler.ApplicationHandler
	Health       *handler.HealthHandler
	// MetricsHandler serves /metrics; nil leaves the route unregistered.
	MetricsHandler http.Handler
	Metrics        metrics.Recorder

	Limiter          ratelimit.Limiter
	RateLimitEnabled bool
	RateLimit        int

	Throttle middleware.ThrottleConfig
	CORS     middleware.CORSConfig
	Security middleware.SecurityConfig
}

// NewRouter configures the chi router with all routes and middleware.
//
// CORS runs outside the recoverer so that every response, panics included,
// carries the CORS headers. Rate limiting runs before the body is read.
func NewRouter(deps RouterDeps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(deps.Security))
	r.Use(middleware.MaxBodySize(deps.Security.MaxRequestBodySize))
	r.Use(middleware.ClientID)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	throttle := deps.Throttle
	if throttle.Logger == nil {
		throttle.Logger = logger
	}
	if throttle.Metrics == nil {
		throttle.Metrics = deps.Metrics
	}

	r.With(
		middleware.RateLimitSubmissions(middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: deps.Limiter,
			Enabled: deps.RateLimitEnabled,
			Limit:   deps.RateLimit,
			Metrics: deps.Metrics,
		}),
		middleware.Throttle(throttle),
	).Post(SubmitPath, deps.Applications.Submit)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}
