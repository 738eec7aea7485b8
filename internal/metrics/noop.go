package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncApplicationSubmitted is a no-op.
func (n *NoopRecorder) IncApplicationSubmitted() {}

// IncApplicationRejected is a no-op.
func (n *NoopRecorder) IncApplicationRejected(reason string) {}

// ObserveSubmissionDuration is a no-op.
func (n *NoopRecorder) ObserveSubmissionDuration(duration time.Duration) {}

// IncRateLimiterError is a no-op.
func (n *NoopRecorder) IncRateLimiterError() {}

// IncEventPublished is a no-op.
func (n *NoopRecorder) IncEventPublished(status string) {}
