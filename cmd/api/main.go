// Package main is the entrypoint for the applicant intake API server.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/joinportal/intake/internal/cache"
	"github.com/joinportal/intake/internal/config"
	"github.com/joinportal/intake/internal/events"
	"github.com/joinportal/intake/internal/handler"
	"github.com/joinportal/intake/internal/metrics"
	"github.com/joinportal/intake/internal/middleware"
	"github.com/joinportal/intake/internal/ratelimit"
	"github.com/joinportal/intake/internal/repository"
	"github.com/joinportal/intake/internal/server"
	"github.com/joinportal/intake/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	recorder, metricsHandler := newMetrics(cfg)

	policy := ratelimit.Policy{
		Limit:  cfg.RateLimitMaxSubmissions,
		Window: cfg.RateLimitWindow,
	}

	var (
		limiter     ratelimit.Limiter
		cacheClient *cache.Cache
		publisher   *events.Publisher
		serviceOpts []service.Option
	)
	readiness := []handler.Dependency{
		{Name: "postgres", Checker: repo, Critical: true},
	}
	if cfg.NeedsRedis() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
		readiness = append(readiness, handler.Dependency{Name: "redis", Checker: cacheClient})
	}

	if cfg.UsesRedis() {
		limiter = cache.NewSubmissionLimiter(cacheClient, policy)
	} else {
		mem := ratelimit.NewMemory(policy)
		mem.StartJanitor(ctx, policy.Window)
		limiter = mem
	}

	if cfg.EventsEnabled {
		publisher = events.NewPublisher(cacheClient.Client(), logger, recorder)
		serviceOpts = append(serviceOpts, service.WithNotifier(publisher))
	}

	applicationService := service.NewApplicationService(repo, recorder, serviceOpts...)

	router := server.NewRouter(server.RouterDeps{
		Logger:           logger,
		Applications:     handler.NewApplicationHandler(applicationService, logger, recorder),
		Health:           handler.NewHealthHandler(readiness...),
		MetricsHandler:   metricsHandler,
		Metrics:          recorder,
		Limiter:          limiter,
		RateLimitEnabled: cfg.RateLimitEnabled,
		RateLimit:        policy.Limit,
		Throttle: middleware.ThrottleConfig{
			RPS:   cfg.GlobalRPS,
			Burst: cfg.GlobalBurst,
		},
		CORS: corsConfig(cfg),
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
	})

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: the database closes last.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}
	srv.OnShutdown("rate-limit janitor", func(context.Context) error {
		cancel()
		return nil
	})
	// Registered last so it runs first, while Redis is still open.
	if publisher != nil {
		srv.OnShutdown("events", publisher.Drain)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"rate_limit_enabled", cfg.RateLimitEnabled,
		"rate_limit_backend", cfg.RateLimitBackend,
		"metrics_enabled", cfg.MetricsEnabled,
		"metrics_backend", cfg.MetricsBackend,
		"events_enabled", cfg.EventsEnabled,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newMetrics returns the recorder and /metrics handler for cfg.
// The handler is nil when metrics are disabled.
func newMetrics(cfg *config.Config) (metrics.Recorder, http.Handler) {
	if !cfg.MetricsEnabled {
		return metrics.NewNoop(), nil
	}
	if cfg.MetricsBackend == config.MetricsBackendMemory {
		mem := metrics.NewInMemory()
		return mem, http.HandlerFunc(handler.NewMetricsHandler(mem).Metrics)
	}
	prom := metrics.NewPrometheus()
	return prom, prom.Handler()
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	c.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	return c
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
