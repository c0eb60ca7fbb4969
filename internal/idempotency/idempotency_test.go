package idempotency

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, nil), mr, client
}

func TestManager_SecondDeliveryIsDuplicate(t *testing.T) {
	store, _, _ := newRedisStore(t)
	m := NewManager(store, nil)
	ctx := context.Background()

	calls := 0
	op := func(context.Context) error {
		calls++
		return nil
	}

	first, err := m.Execute(ctx, "discord:123", time.Hour, op)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := m.Execute(ctx, "discord:123", time.Hour, op)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, StatusCompleted, second.Status)
	assert.Equal(t, 1, calls)
}

func TestManager_RetryableFailureAllowsRedelivery(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil)
	ctx := context.Background()

	calls := 0
	_, err := m.Execute(ctx, "k", time.Hour, func(context.Context) error {
		calls++
		return apperrors.NewDatabaseError(errors.New("conn reset"))
	})
	require.Error(t, err)

	res, err := m.Execute(ctx, "k", time.Hour, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, 2, calls)
}

func TestManager_UserErrorIsRecorded(t *testing.T) {
	m := NewManager(NewMemoryStore(), nil)
	ctx := context.Background()

	userErr := apperrors.NewPreconditionError("insufficient_funds", "not enough", nil)
	_, err := m.Execute(ctx, "k", time.Hour, func(context.Context) error { return userErr })
	require.ErrorIs(t, err, userErr)

	res, err := m.Execute(ctx, "k", time.Hour, func(context.Context) error {
		t.Fatal("operation must not run twice")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Equal(t, StatusFailed, res.Status)
}

func TestManager_LockedKeyReportsInProgress(t *testing.T) {
	store, _, _ := newRedisStore(t)
	m := NewManager(store, nil)
	ctx := context.Background()

	ok, err := store.Lock(ctx, "busy", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = m.Execute(ctx, "busy", time.Hour, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrInProgress)
}

func TestRedisStore_RecordExpires(t *testing.T) {
	store, mr, _ := newRedisStore(t)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set(ctx, "k", &Record{Status: StatusCompleted, At: at}, time.Minute))

	rec, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, at, rec.At)

	mr.FastForward(2 * time.Minute)
	rec, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCleaner_RemovesKeysWithoutTTL(t *testing.T) {
	store, mr, client := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "fresh", &Record{Status: StatusCompleted}, time.Hour))
	require.NoError(t, mr.Set("idempotency:orphan", "x"))

	mem := NewMemoryStore()
	require.NoError(t, mem.Set(ctx, "old", &Record{Status: StatusCompleted}, -time.Second))

	c := NewCleaner(client, mem, nil, time.Minute)
	assert.Equal(t, 2, c.Sweep(ctx))
	assert.False(t, mr.Exists("idempotency:orphan"))
	assert.True(t, mr.Exists("idempotency:fresh"))
}

func TestEventKey(t *testing.T) {
	assert.Equal(t, EventKey("discord", "1", "2"), EventKey("discord", "1", "2"))
	assert.NotEqual(t, EventKey("discord", "1"), EventKey("telegram", "1"))
	assert.NotEqual(t, EventKey("discord", "12"), EventKey("discord", "1", "2"))
	assert.True(t, strings.HasPrefix(EventKey("telegram", "9"), "event:"))
}
