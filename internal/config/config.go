// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Rate-limit backends.
const (
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// Metrics backends. The memory backend serves a plain-text snapshot from
// process counters for deployments without a Prometheus scraper.
const (
	MetricsBackendPrometheus = "prometheus"
	MetricsBackendMemory     = "memory"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis). Only needed by the redis rate-limit backend.
	RedisURL string `env:"REDIS_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Per-client submission limit
	RateLimitEnabled        bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitBackend        string        `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
	RateLimitMaxSubmissions int           `env:"RATE_LIMIT_MAX_SUBMISSIONS" envDefault:"3"`
	RateLimitWindow         time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1h"`

	// Process-wide throttle; 0 disables
	GlobalRPS   float64 `env:"INTAKE_GLOBAL_RPS" envDefault:"0"`
	GlobalBurst int     `env:"INTAKE_GLOBAL_BURST" envDefault:"20"`

	// Comma-separated list of allowed origins; "*" allows any
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Request body size limit in bytes
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`

	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsBackend string `env:"METRICS_BACKEND" envDefault:"prometheus"`

	// Publish application.submitted events to a Redis stream
	EventsEnabled bool `env:"EVENTS_ENABLED" envDefault:"false"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesRedis reports whether the rate limiter is backed by Redis.
func (c *Config) UsesRedis() bool {
	return c.RateLimitEnabled && c.RateLimitBackend == RateLimitBackendRedis
}

// NeedsRedis reports whether any component requires a Redis connection.
func (c *Config) NeedsRedis() bool {
	return c.UsesRedis() || c.EventsEnabled
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
// An empty value allows any origin.
func (c *Config) GetCORSAllowedOrigins() []string {
	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return []string{"*"}
	}
	return result
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.RateLimitBackend {
	case RateLimitBackendMemory, RateLimitBackendRedis:
	default:
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BACKEND must be %q or %q, got %q",
			RateLimitBackendMemory, RateLimitBackendRedis, c.RateLimitBackend))
	}

	switch c.MetricsBackend {
	case MetricsBackendPrometheus, MetricsBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("METRICS_BACKEND must be %q or %q, got %q",
			MetricsBackendPrometheus, MetricsBackendMemory, c.MetricsBackend))
	}

	if c.UsesRedis() && c.RedisURL == "" {
		errs = append(errs, errors.New("REDIS_URL is required when RATE_LIMIT_BACKEND=redis"))
	}
	if c.EventsEnabled && c.RedisURL == "" {
		errs = append(errs, errors.New("REDIS_URL is required when EVENTS_ENABLED=true"))
	}
	if c.RateLimitMaxSubmissions <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX_SUBMISSIONS must be positive"))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.GlobalRPS < 0 {
		errs = append(errs, errors.New("INTAKE_GLOBAL_RPS must not be negative"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or values conflict.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
