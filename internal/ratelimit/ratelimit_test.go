package ratelimit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/econ-bot/pkg/config"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRedisLimiter_BlocksWhenExceeded(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRedisLimiter(client, testLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(ctx, "user:blocks", 2, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i < 2, result.Allowed, "event %d", i)
	}
}

func TestRedisLimiter_SlidingWindow(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRedisLimiter(client, testLogger())
	ctx := context.Background()

	now := time.Now()
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "user:window", 2, time.Second)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, "user:window", 2, time.Second)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 1, result.RetryAfter(now))

	now = now.Add(1100 * time.Millisecond)
	result, err = limiter.Check(ctx, "user:window", 2, time.Second)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestMemoryLimiter(t *testing.T) {
	limiter := NewMemoryLimiter()
	now := time.Now()
	limiter.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		result, err := limiter.Check(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}

	result, err := limiter.Check(ctx, "k", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, limiter.Cleanup(time.Minute))
}

type failingLimiter struct{}

func (failingLimiter) Check(context.Context, string, int, time.Duration) (*Result, error) {
	return nil, errors.New("redis down")
}

func TestAdaptiveLimiter_FallsBackAtHalfLimit(t *testing.T) {
	limiter := NewAdaptiveLimiter(failingLimiter{}, NewMemoryLimiter(), testLogger())
	ctx := context.Background()

	_, err := limiter.Check(ctx, "k", 4, time.Minute)
	require.NoError(t, err)
	_, err = limiter.Check(ctx, "k", 4, time.Minute)
	require.NoError(t, err)

	result, err := limiter.Check(ctx, "k", 4, time.Minute)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.False(t, result.Allowed)
}

func TestRules_UpdateAndLookup(t *testing.T) {
	rules := NewRules(config.RateLimitConfig{
		Enabled:   true,
		PerUser:   config.RateLimitRule{Limit: 20, Window: "1m"},
		Commands:  map[string]config.RateLimitRule{"Rob": {Limit: 2, Window: "10s"}, "broken": {Limit: 1, Window: "soon"}},
		Whitelist: []string{"owner"},
	})

	assert.True(t, rules.Enabled())
	assert.True(t, rules.IsWhitelisted("owner"))
	assert.False(t, rules.IsWhitelisted("alice"))

	perUser, ok := rules.PerUser()
	require.True(t, ok)
	assert.Equal(t, Rule{Limit: 20, Window: time.Minute}, perUser)

	rob, ok := rules.Command("rob")
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, rob.Window)

	_, ok = rules.Command("broken")
	assert.False(t, ok)

	rules.Update(config.RateLimitConfig{Enabled: false})
	assert.False(t, rules.Enabled())
	_, ok = rules.Command("rob")
	assert.False(t, ok)
}

func TestCleaner_RemovesIdleRedisWindows(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	old := time.Now().Add(-time.Hour).UnixMilli()
	_, err := mr.ZAdd(redisKeyPrefix+"idle", float64(old), "e1")
	require.NoError(t, err)
	_, err = mr.ZAdd(redisKeyPrefix+"busy", float64(time.Now().UnixMilli()), "e2")
	require.NoError(t, err)

	cleaner := NewCleaner(client, nil, testLogger(), time.Minute, 5*time.Minute)
	assert.Equal(t, 1, cleaner.sweepRedis(ctx))
	assert.False(t, mr.Exists(redisKeyPrefix+"idle"))
	assert.True(t, mr.Exists(redisKeyPrefix+"busy"))
}
