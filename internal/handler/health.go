package handler

import (
	"context"
	"net/http"
	"time"
)

// readinessTimeout bounds each dependency check.
const readinessTimeout = 2 * time.Second

// Readiness states.
const (
	StatusOK        = "ok"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Dependency is a component checked by the readiness endpoint.
// A failing critical dependency takes the instance out of rotation. A failing
// non-critical one only marks it degraded: the Redis limiter fails open and
// events are best effort, so submissions still succeed without Redis.
type Dependency struct {
	Name     string
	Checker  HealthChecker
	Critical bool
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	deps []Dependency
}

// NewHealthHandler creates a HealthHandler. Dependencies with a nil
// Checker are ignored.
func NewHealthHandler(deps ...Dependency) *HealthHandler {
	h := &HealthHandler{}
	for _, d := range deps {
		if d.Checker != nil {
			h.deps = append(h.deps, d)
		}
	}
	return h
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz reports that the process is serving. No dependency checks.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: StatusOK})
}

// Readyz checks every dependency. It returns 503 only when a critical one
// fails.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string, len(h.deps))
	status := StatusOK

	for _, d := range h.deps {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := d.Checker.Ping(ctx)
		cancel()

		if err == nil {
			checks[d.Name] = StatusOK
			continue
		}
		checks[d.Name] = "error: " + err.Error()
		if d.Critical {
			status = StatusUnhealthy
		} else if status == StatusOK {
			status = StatusDegraded
		}
	}

	code := http.StatusOK
	if status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{Status: status, Checks: checks})
}
