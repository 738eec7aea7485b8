package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/joinportal/intake/internal/cache"
)

type stubChecker struct {
	err error
}

func (s stubChecker) Ping(context.Context) error {
	return s.err
}

func readyz(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return rec.Code, resp
}

func TestHealthHandler_Healthz(t *testing.T) {
	h := NewHealthHandler(Dependency{Name: "postgres", Checker: stubChecker{err: errors.New("down")}, Critical: true})

	rec := httptest.NewRecorder()
	h.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	// Liveness never consults dependencies.
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestHealthHandler_Readyz(t *testing.T) {
	down := stubChecker{err: errors.New("connection refused")}

	tests := []struct {
		name       string
		deps       []Dependency
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "no dependencies",
			wantCode:   http.StatusOK,
			wantStatus: StatusOK,
			wantChecks: map[string]string{},
		},
		{
			name: "store and redis healthy",
			deps: []Dependency{
				{Name: "postgres", Checker: stubChecker{}, Critical: true},
				{Name: "redis", Checker: stubChecker{}},
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusOK,
			wantChecks: map[string]string{"postgres": "ok", "redis": "ok"},
		},
		{
			name: "store down",
			deps: []Dependency{
				{Name: "postgres", Checker: down, Critical: true},
				{Name: "redis", Checker: stubChecker{}},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusUnhealthy,
			wantChecks: map[string]string{"postgres": "error: connection refused", "redis": "ok"},
		},
		{
			name: "redis down keeps accepting submissions",
			deps: []Dependency{
				{Name: "postgres", Checker: stubChecker{}, Critical: true},
				{Name: "redis", Checker: down},
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusDegraded,
			wantChecks: map[string]string{"postgres": "ok", "redis": "error: connection refused"},
		},
		{
			name: "both down",
			deps: []Dependency{
				{Name: "redis", Checker: down},
				{Name: "postgres", Checker: down, Critical: true},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusUnhealthy,
		},
		{
			name:       "nil checker ignored",
			deps:       []Dependency{{Name: "redis", Checker: nil}},
			wantCode:   http.StatusOK,
			wantStatus: StatusOK,
			wantChecks: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := readyz(t, NewHealthHandler(tt.deps...))

			if code != tt.wantCode {
				t.Errorf("status code = %d, want %d", code, tt.wantCode)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if tt.wantChecks == nil {
				return
			}
			if len(resp.Checks) != len(tt.wantChecks) {
				t.Errorf("checks = %v, want %v", resp.Checks, tt.wantChecks)
			}
			for name, want := range tt.wantChecks {
				if resp.Checks[name] != want {
					t.Errorf("checks[%s] = %q, want %q", name, resp.Checks[name], want)
				}
			}
		})
	}
}

func TestHealthHandler_Readyz_RedisStops(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr:        mr.Addr(),
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	h := NewHealthHandler(
		Dependency{Name: "postgres", Checker: stubChecker{}, Critical: true},
		Dependency{Name: "redis", Checker: cache.NewFromClient(client)},
	)

	if code, resp := readyz(t, h); code != http.StatusOK || resp.Status != StatusOK {
		t.Fatalf("before stop: code=%d status=%q", code, resp.Status)
	}

	mr.Close()

	code, resp := readyz(t, h)
	if code != http.StatusOK {
		t.Errorf("status code = %d, want 200", code)
	}
	if resp.Status != StatusDegraded {
		t.Errorf("status = %q, want degraded", resp.Status)
	}
	if resp.Checks["redis"] == StatusOK {
		t.Error("redis check should report the failure")
	}
}
