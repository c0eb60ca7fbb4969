package ratelimit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cleaner periodically removes empty windows left behind by idle users.
type Cleaner struct {
	redisClient *redis.Client
	memory      *MemoryLimiter
	log         *slog.Logger
	interval    time.Duration
	maxAge      time.Duration
}

// NewCleaner constructs a Cleaner. Either backend may be nil.
func NewCleaner(client *redis.Client, memory *MemoryLimiter, log *slog.Logger, interval, maxAge time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{
		redisClient: client,
		memory:      memory,
		log:         log,
		interval:    interval,
		maxAge:      maxAge,
	}
}

// Run starts the cleaner loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("rate limit cleaner stopped", slog.Any("reason", ctx.Err()))
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	removed := 0
	if c.memory != nil {
		removed += c.memory.Cleanup(c.maxAge)
	}
	if c.redisClient != nil {
		removed += c.sweepRedis(ctx)
	}

	if removed > 0 {
		c.log.Debug("rate limit windows cleaned", slog.Int("removed", removed))
	}
}

// sweepRedis deletes sorted sets that hold no events newer than maxAge.
func (c *Cleaner) sweepRedis(ctx context.Context) int {
	cutoff := time.Now().Add(-c.maxAge).UnixMilli()
	removed := 0

	var cursor uint64
	for {
		keys, next, err := c.redisClient.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			c.log.Error("rate limit scan failed", slog.Any("error", err))
			return removed
		}

		for _, key := range keys {
			fresh, err := c.redisClient.ZCount(ctx, key, "("+strconv.FormatInt(cutoff, 10), "+inf").Result()
			if err != nil {
				c.log.Warn("failed to inspect rate limit key", slog.String("key", key), slog.Any("error", err))
				continue
			}
			if fresh > 0 {
				continue
			}
			if err := c.redisClient.Del(ctx, key).Err(); err == nil {
				removed++
			}
		}

		if next == 0 || ctx.Err() != nil {
			return removed
		}
		cursor = next
	}
}
