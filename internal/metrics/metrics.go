// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Rejection reasons recorded by IncApplicationRejected.
const (
	ReasonValidation  = "validation"
	ReasonDuplicate   = "duplicate"
	ReasonStorage     = "storage"
	ReasonRateLimited = "rate_limited"
	ReasonThrottled   = "throttled"
	ReasonInvalidBody = "invalid_body"
)

// Event publish outcomes recorded by IncEventPublished.
const (
	EventPublished = "success"
	EventDropped   = "dropped"
)

// Reasons lists every rejection reason.
var Reasons = []string{
	ReasonValidation,
	ReasonDuplicate,
	ReasonStorage,
	ReasonRateLimited,
	ReasonThrottled,
	ReasonInvalidBody,
}

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	IncApplicationSubmitted()
	IncApplicationRejected(reason string)
	ObserveSubmissionDuration(duration time.Duration)
	IncRateLimiterError()
	IncEventPublished(status string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
