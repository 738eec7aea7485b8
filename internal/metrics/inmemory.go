package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	ApplicationsSubmitted     uint64
	ApplicationsRejected      map[string]uint64
	SubmissionDurationCount   uint64
	SubmissionDurationTotalNs int64
	RateLimiterErrors         uint64
	EventsPublished           uint64
	EventsDropped             uint64
}

// Rejected returns the rejection count for a reason.
func (s Snapshot) Rejected(reason string) uint64 {
	return s.ApplicationsRejected[reason]
}

// InMemoryRecorder keeps counters in process memory. It backs the
// plain-text /metrics endpoint and test assertions.
type InMemoryRecorder struct {
	applicationsSubmitted     uint64
	submissionDurationCount   uint64
	submissionDurationTotalNs int64
	rateLimiterErrors         uint64
	eventsPublished           uint64
	eventsDropped             uint64

	mu       sync.Mutex
	rejected map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{rejected: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	rejected := make(map[string]uint64, len(m.rejected))
	for k, v := range m.rejected {
		rejected[k] = v
	}
	m.mu.Unlock()

	return Snapshot{
		ApplicationsSubmitted:     atomic.LoadUint64(&m.applicationsSubmitted),
		ApplicationsRejected:      rejected,
		SubmissionDurationCount:   atomic.LoadUint64(&m.submissionDurationCount),
		SubmissionDurationTotalNs: atomic.LoadInt64(&m.submissionDurationTotalNs),
		RateLimiterErrors:         atomic.LoadUint64(&m.rateLimiterErrors),
		EventsPublished:           atomic.LoadUint64(&m.eventsPublished),
		EventsDropped:             atomic.LoadUint64(&m.eventsDropped),
	}
}

// IncApplicationSubmitted increments the accepted application counter.
func (m *InMemoryRecorder) IncApplicationSubmitted() {
	atomic.AddUint64(&m.applicationsSubmitted, 1)
}

// IncApplicationRejected increments the rejection counter for reason.
func (m *InMemoryRecorder) IncApplicationRejected(reason string) {
	m.mu.Lock()
	m.rejected[reason]++
	m.mu.Unlock()
}

// ObserveSubmissionDuration records how long a submission took.
func (m *InMemoryRecorder) ObserveSubmissionDuration(duration time.Duration) {
	atomic.AddUint64(&m.submissionDurationCount, 1)
	atomic.AddInt64(&m.submissionDurationTotalNs, duration.Nanoseconds())
}

// IncRateLimiterError increments the limiter backend error counter.
func (m *InMemoryRecorder) IncRateLimiterError() {
	atomic.AddUint64(&m.rateLimiterErrors, 1)
}

// IncEventPublished increments the published or dropped event counter.
func (m *InMemoryRecorder) IncEventPublished(status string) {
	if status == EventDropped {
		atomic.AddUint64(&m.eventsDropped, 1)
		return
	}
	atomic.AddUint64(&m.eventsPublished, 1)
}
