package session

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testScope = Scope{GuildID: "g1", ChannelID: "c1"}

func newSession(id string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		Kind:      KindBlackjack,
		Scope:     testScope,
		OwnerID:   "u1",
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestRedisStore_CreateGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(setupTestRedis(t), testLogger())

	sess := newSession("s1", time.Now(), time.Minute)
	require.NoError(t, sess.Encode(map[string]int{"bet": 50}))
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, testScope, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.OwnerID)

	var payload map[string]int
	require.NoError(t, got.Decode(&payload))
	assert.Equal(t, 50, payload["bet"])

	require.NoError(t, store.Delete(ctx, testScope, "s1"))
	assert.ErrorIs(t, store.Delete(ctx, testScope, "s1"), ErrNotFound)

	_, err = store.Get(ctx, testScope, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ScopeIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(setupTestRedis(t), testLogger())

	require.NoError(t, store.Create(ctx, newSession("s1", time.Now(), time.Minute)))

	_, err := store.Get(ctx, Scope{GuildID: "g1", ChannelID: "other"}, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ExpiredSessionIsHiddenButListed(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(setupTestRedis(t), testLogger())

	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Create(ctx, newSession("s1", now, time.Minute)))

	store.now = func() time.Time { return now.Add(2 * time.Minute) }

	_, err := store.Get(ctx, testScope, "s1")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRedisStore_SaveRequiresExisting(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(setupTestRedis(t), testLogger())

	assert.ErrorIs(t, store.Save(ctx, newSession("missing", time.Now(), time.Minute)), ErrNotFound)
}

func TestRedisStore_Lock(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(setupTestRedis(t), testLogger())

	unlock, err := store.Lock(ctx, testScope, "s1")
	require.NoError(t, err)

	_, err = store.Lock(ctx, testScope, "s1")
	assert.ErrorIs(t, err, ErrLocked)

	unlock()

	unlock, err = store.Lock(ctx, testScope, "s1")
	require.NoError(t, err)
	unlock()
}
