// Package ratelimit implements fixed-window request counting behind an
// injectable store abstraction. The middleware consumes only the Store
// interface, so the in-process store can be swapped for the Redis-backed
// one without changing the middleware contract.
package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of a window increment.
type Result struct {
	// Allowed is true when the request fits inside the quota.
	Allowed bool
	// Count is the number of requests observed in the current window,
	// including this one.
	Count int
	// Limit echoes the configured maximum for header reporting.
	Limit int
	// ResetAt is when the current window expires.
	ResetAt time.Time
}

// Remaining returns the requests left in the current window, clamped to zero.
func (r Result) Remaining() int {
	remaining := r.Limit - r.Count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RetryAfter returns how long a rejected client should wait before retrying.
func (r Result) RetryAfter(now time.Time) time.Duration {
	d := r.ResetAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Store counts requests per client key inside a fixed window. Increment must
// be atomic with respect to the allow decision: under concurrent calls for
// the same key, at most limit requests may be reported as allowed per window.
type Store interface {
	Increment(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}
