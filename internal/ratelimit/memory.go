package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is the in-process sliding window used while Redis is down.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// NewMemoryLimiter returns an in-memory limiter implementation.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Check enforces a sliding-window limit for the provided key.
func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	events := keepRecent(m.windows[key], now.Add(-window))

	resetAt := now.Add(window)
	if len(events) > 0 {
		resetAt = events[0].Add(window)
	}

	if len(events) >= limit {
		m.windows[key] = events
		return &Result{ResetAt: resetAt}, nil
	}

	events = append(events, now)
	m.windows[key] = events
	return &Result{Allowed: true, Remaining: limit - len(events), ResetAt: resetAt}, nil
}

// Cleanup drops keys whose newest event is older than maxAge.
func (m *MemoryLimiter) Cleanup(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, events := range m.windows {
		if len(events) == 0 || events[len(events)-1].Before(cutoff) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}

func keepRecent(events []time.Time, windowStart time.Time) []time.Time {
	first := 0
	for first < len(events) && events[first].Before(windowStart) {
		first++
	}
	return events[first:]
}
