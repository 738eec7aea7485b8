package handler

import (
	"fmt"
	"net/http"

	"github.com/joinportal/intake/internal/metrics"
)

// MetricsHandler exposes in-memory counters in Prometheus text format.
// It serves /metrics when METRICS_BACKEND=memory.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "intake_applications_submitted_total %d\n", snap.ApplicationsSubmitted)
	for _, reason := range metrics.Reasons {
		writeMetric(w, "intake_applications_rejected_total{reason=%q} %d\n", reason, snap.Rejected(reason))
	}
	writeMetric(w, "intake_submission_duration_seconds_count %d\n", snap.SubmissionDurationCount)
	writeMetric(w, "intake_submission_duration_seconds_sum %.6f\n", float64(snap.SubmissionDurationTotalNs)/1e9)
	writeMetric(w, "intake_rate_limiter_errors_total %d\n", snap.RateLimiterErrors)
	writeMetric(w, "intake_events_published_total{status=%q} %d\n", metrics.EventPublished, snap.EventsPublished)
	writeMetric(w, "intake_events_published_total{status=%q} %d\n", metrics.EventDropped, snap.EventsDropped)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
