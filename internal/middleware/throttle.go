package middleware

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/joinportal/intake/internal/handler/dto"
	"github.com/joinportal/intake/internal/metrics"
)

// ThrottleConfig configures the process-wide submission throttle.
type ThrottleConfig struct {
	// RPS is the sustained rate; zero or less disables the throttle.
	RPS     float64
	Burst   int
	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// Throttle returns middleware backed by a single token bucket shared by all
// callers. It bounds write load on the store when clients rotate forwarding
// headers to dodge the per-client limit.
func Throttle(cfg ThrottleConfig) func(http.Handler) http.Handler {
	if cfg.RPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RPS), burst)

	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				recorder.IncApplicationRejected(metrics.ReasonThrottled)
				if cfg.Logger != nil {
					cfg.Logger.Warn("submission throttled",
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, dto.RateLimitedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
