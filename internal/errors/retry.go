package errors

import (
	"context"
	"database/sql/driver"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/lib/pq"
)

// RetryPolicy bounds how often and how fast a ledger write is retried after
// a transient failure. Delays grow exponentially up to MaxDelay with up to
// 25% jitter, so contending transfers do not retry in lockstep.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultRetryPolicy suits row-lock contention on a single guild's profiles.
var DefaultRetryPolicy = RetryPolicy{
	Attempts:  4,
	BaseDelay: 50 * time.Millisecond,
	MaxDelay:  2 * time.Second,
}

// WithRetry runs fn under DefaultRetryPolicy.
func WithRetry(ctx context.Context, fn func() error) error {
	return DefaultRetryPolicy.Do(ctx, fn)
}

// Do runs fn until it succeeds, fails permanently, runs out of attempts, or
// ctx ends.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	attempts := max(p.Attempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err = fn(); err == nil || !IsRetryable(err) || attempt == attempts {
			return err
		}

		timer := time.NewTimer(p.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if d <= 0 || (p.MaxDelay > 0 && d > p.MaxDelay) {
		d = p.MaxDelay
	}
	if d <= 0 {
		return 0
	}
	return d - time.Duration(rand.Int64N(int64(d)/4+1))
}

// IsRetryable reports whether running the same operation again may succeed.
// Postgres errors decide for themselves: serialization failures, deadlocks
// and dropped connections are transient, constraint violations are not,
// whatever the wrapping AppError says.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "40", "08":
			return true
		case "57":
			return pqErr.Code == "57P01"
		default:
			return false
		}
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Retryable
	}
	return false
}
