package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local fixed-window limiter.
//
// Counters live only in this process: a restart resets them and replicas
// each enforce the limit independently.
type Memory struct {
	mu      sync.Mutex
	policy  Policy
	entries map[string]*window
	now     func() time.Time
}

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryOption configures a Memory limiter.
type MemoryOption func(*Memory)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates a process-local limiter for the given policy.
func NewMemory(policy Policy, opts ...MemoryOption) *Memory {
	m := &Memory{
		policy:  policy,
		entries: make(map[string]*window),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Allow implements Limiter. It never returns an error.
func (m *Memory) Allow(_ context.Context, key string) (*Result, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.entries[key]
	if !ok || now.After(w.resetAt) {
		w = &window{count: 1, resetAt: now.Add(m.policy.Window)}
		m.entries[key] = w
		return &Result{
			Allowed:   true,
			Count:     1,
			Remaining: m.policy.remaining(1),
			ResetAt:   w.resetAt,
		}, nil
	}

	if w.count >= int64(m.policy.Limit) {
		return &Result{
			Allowed:    false,
			Count:      w.count,
			Remaining:  0,
			ResetAt:    w.resetAt,
			RetryAfter: w.resetAt.Sub(now),
		}, nil
	}

	w.count++
	return &Result{
		Allowed:   true,
		Count:     w.count,
		Remaining: m.policy.remaining(w.count),
		ResetAt:   w.resetAt,
	}, nil
}

// Len returns the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Cleanup removes windows that have already expired.
func (m *Memory) Cleanup() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for k, w := range m.entries {
		if now.After(w.resetAt) {
			delete(m.entries, k)
		}
	}
}

// StartJanitor periodically removes expired windows until ctx is done.
func (m *Memory) StartJanitor(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}

	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Cleanup()
			}
		}
	}()
}
