package session

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ExpireFunc is invoked once for every session the cleaner closes.
type ExpireFunc func(ctx context.Context, s *Session)

// Cleaner closes expired sessions on a schedule and hands each one to the
// registered expiry hooks.
type Cleaner struct {
	store    Store
	log      *slog.Logger
	interval time.Duration
	now      func() time.Time
	hooks    []ExpireFunc
}

// NewCleaner constructs a Cleaner instance.
func NewCleaner(store Store, log *slog.Logger, interval time.Duration, hooks ...ExpireFunc) *Cleaner {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}

	return &Cleaner{
		store:    store,
		log:      log,
		interval: interval,
		now:      time.Now,
		hooks:    hooks,
	}
}

// Run starts the cleanup loop until the context is cancelled.
func (c *Cleaner) Run(ctx context.Context) {
	if c == nil || c.store == nil {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("session cleaner stopped", slog.Any("reason", ctx.Err()))
			return
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Count reports the number of stored sessions.
func (c *Cleaner) Count(ctx context.Context) (int, error) {
	sessions, err := c.store.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(sessions), nil
}

// Sweep closes every expired session once and returns how many it closed.
func (c *Cleaner) Sweep(ctx context.Context) int {
	sessions, err := c.store.List(ctx)
	if err != nil {
		c.log.Error("session cleaner list failed", slog.Any("error", err))
		return 0
	}

	closed := 0
	now := c.now()
	for _, s := range sessions {
		if ctx.Err() != nil {
			return closed
		}
		if !s.Expired(now) {
			continue
		}
		if c.expire(ctx, s) {
			closed++
		}
	}
	return closed
}

func (c *Cleaner) expire(ctx context.Context, s *Session) bool {
	unlock, err := c.store.Lock(ctx, s.Scope, s.ID)
	if err != nil {
		// An action is settling it right now.
		return false
	}
	defer unlock()

	if err := c.store.Delete(ctx, s.Scope, s.ID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.log.Error("session cleaner delete failed", slog.String("session_id", s.ID), slog.Any("error", err))
		}
		return false
	}

	c.log.Info("session expired",
		slog.String("session_id", s.ID),
		slog.String("kind", string(s.Kind)),
		slog.String("guild_id", s.Scope.GuildID),
	)
	for _, hook := range c.hooks {
		hook(ctx, s)
	}
	return true
}
