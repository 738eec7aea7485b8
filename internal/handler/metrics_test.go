package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joinportal/intake/internal/metrics"
)

func TestMetricsHandler(t *testing.T) {
	rec := metrics.NewInMemory()
	rec.IncApplicationSubmitted()
	rec.IncApplicationRejected(metrics.ReasonDuplicate)
	rec.IncApplicationRejected(metrics.ReasonDuplicate)
	rec.IncEventPublished(metrics.EventDropped)

	h := NewMetricsHandler(rec)
	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	out := w.Body.String()
	for _, want := range []string{
		"intake_applications_submitted_total 1",
		`intake_applications_rejected_total{reason="duplicate"} 2`,
		`intake_applications_rejected_total{reason="validation"} 0`,
		`intake_events_published_total{status="success"} 0`,
		`intake_events_published_total{status="dropped"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q:\n%s", want, out)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	h := NewMetricsHandler(nil)
	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}
