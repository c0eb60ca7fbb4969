// Package ratelimit throttles bot commands with a sliding window. Redis is
// the shared backend; a stricter in-process window takes over while Redis is
// unavailable.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Result captures the outcome of a rate-limit evaluation.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the whole number of seconds until the window frees up.
func (r *Result) RetryAfter(now time.Time) int {
	if r == nil || !r.ResetAt.After(now) {
		return 1
	}
	return int((r.ResetAt.Sub(now) + time.Second - 1) / time.Second)
}

// Limiter counts one event against key and reports whether it fits.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// ErrLimitExceeded indicates the rate limit has been reached for the key.
var ErrLimitExceeded = errors.New("rate limit exceeded")
