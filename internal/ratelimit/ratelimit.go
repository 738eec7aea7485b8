// Package ratelimit provides the fixed-window submission limiter used by the
// intake endpoint.
//
// A window starts with the first request from a key and lasts for the
// configured duration. Within a window at most Limit requests are allowed;
// the first request after the window boundary starts a fresh window.
package ratelimit

import (
	"context"
	"time"
)

// Result contains the outcome of a limiter check.
type Result struct {
	Allowed bool
	// Count is the number of requests counted in the current window.
	Count int64
	// Remaining is how many more requests the key may make in this window.
	Remaining int64
	ResetAt   time.Time
	// RetryAfter is zero when the request was allowed.
	RetryAfter time.Duration
}

// Limiter decides whether a request from key is allowed now and records it.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
}

// Policy is a fixed-window limit.
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicy is three submissions per client per hour.
var DefaultPolicy = Policy{
	Limit:  3,
	Window: time.Hour,
}

func (p Policy) remaining(count int64) int64 {
	r := int64(p.Limit) - count
	if r < 0 {
		return 0
	}
	return r
}
