package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/joinportal/intake/internal/handler/dto"
	"github.com/joinportal/intake/internal/metrics"
	"github.com/joinportal/intake/internal/ratelimit"
)

// RateLimitConfig holds configuration for the per-client submission limiter.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter ratelimit.Limiter
	Enabled bool
	// Limit is reported in X-RateLimit-Limit; zero omits the headers.
	Limit   int
	Metrics metrics.Recorder
}

// RateLimitSubmissions returns middleware that limits submissions per client
// identifier. It runs before the request body is read, so over-limit
// requests are refused regardless of payload validity.
//
// Limiter errors are logged and the request is allowed.
func RateLimitSubmissions(cfg RateLimitConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || cfg.Limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientIDFor(r)

			result, err := cfg.Limiter.Allow(r.Context(), clientID)
			if err != nil {
				recorder.IncRateLimiterError()
				logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, cfg.Limit, result.Remaining, result.ResetAt)

			if !result.Allowed {
				recorder.IncApplicationRejected(metrics.ReasonRateLimited)
				logger.Warn("rate_limit_exceeded",
					slog.String("client_id", clientID),
					slog.Int64("count", result.Count),
					slog.Int64("retry_after_seconds", retryAfterSeconds(result.RetryAfter)),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.FormatInt(retryAfterSeconds(result.RetryAfter), 10))
				writeError(w, http.StatusTooManyRequests, dto.RateLimitedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

// retryAfterSeconds rounds up to whole seconds, never below one.
func retryAfterSeconds(d time.Duration) int64 {
	s := int64(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
