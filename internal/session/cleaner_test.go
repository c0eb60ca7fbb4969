package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleaner_SweepClosesExpiredOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryStore().WithClock(func() time.Time { return now })

	require.NoError(t, store.Create(ctx, newSession("old", now.Add(-2*time.Minute), time.Minute)))
	require.NoError(t, store.Create(ctx, newSession("live", now, time.Minute)))

	var expired []string
	cleaner := NewCleaner(store, testLogger(), time.Second, func(_ context.Context, s *Session) {
		expired = append(expired, s.ID)
	})
	cleaner.now = func() time.Time { return now }

	assert.Equal(t, 1, cleaner.Sweep(ctx))
	assert.Equal(t, []string{"old"}, expired)

	assert.Equal(t, 0, cleaner.Sweep(ctx))
	assert.Len(t, expired, 1)

	count, err := cleaner.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCleaner_SkipsLockedSession(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryStore().WithClock(func() time.Time { return now })
	require.NoError(t, store.Create(ctx, newSession("busy", now.Add(-time.Hour), time.Minute)))

	unlock, err := store.Lock(ctx, testScope, "busy")
	require.NoError(t, err)

	cleaner := NewCleaner(store, testLogger(), time.Second)
	cleaner.now = func() time.Time { return now }
	assert.Equal(t, 0, cleaner.Sweep(ctx))

	unlock()
	assert.Equal(t, 1, cleaner.Sweep(ctx))
}

func TestCleaner_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		NewCleaner(NewMemoryStore(), testLogger(), 5*time.Millisecond).Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop")
	}
}
