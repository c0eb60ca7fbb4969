// Package guildcache keeps guild configurations in Redis in front of the
// document store. Every command reads the guild config at least once, so a
// cache hit saves a database round trip per event.
package guildcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/repository"
)

// DefaultTTL bounds how stale a cached config may be when another instance
// ran setup.
const DefaultTTL = 10 * time.Minute

// absent marks a guild that never ran setup so misses are cached too.
const absent = "null"

// KV is the subset of the Redis client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Store is a read-through repository.GuildStore.
type Store struct {
	next repository.GuildStore
	kv   KV
	ttl  time.Duration
	log  *slog.Logger
}

// New wraps next. A nil kv disables caching.
func New(next repository.GuildStore, kv KV, ttl time.Duration, log *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{next: next, kv: kv, ttl: ttl, log: log}
}

// Get returns the cached config, loading and caching it on a miss. Cache
// failures fall through to the store.
func (s *Store) Get(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	if s.kv == nil {
		return s.next.Get(ctx, guildID)
	}

	raw, err := s.kv.Get(ctx, cacheKey(guildID))
	switch {
	case err == nil:
		if cfg, ok := s.decode(guildID, raw); ok {
			return cfg, nil
		}
	case !errors.Is(err, goredis.Nil):
		s.log.Warn("guild cache read failed", slog.String("guild_id", guildID), slog.Any("error", err))
	}

	cfg, err := s.next.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, guildID, cfg)
	return cfg, nil
}

// Save writes through and drops the cached entry.
func (s *Store) Save(ctx context.Context, cfg *domain.GuildConfig) error {
	if err := s.next.Save(ctx, cfg); err != nil {
		return err
	}
	s.Invalidate(ctx, cfg.GuildID)
	return nil
}

// Invalidate removes the cached entry if it exists.
func (s *Store) Invalidate(ctx context.Context, guildID string) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Delete(ctx, cacheKey(guildID)); err != nil {
		s.log.Warn("guild cache invalidation failed", slog.String("guild_id", guildID), slog.Any("error", err))
	}
}

func (s *Store) decode(guildID, raw string) (*domain.GuildConfig, bool) {
	if raw == absent {
		return nil, true
	}

	var cfg domain.GuildConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		s.log.Warn("guild cache entry corrupt", slog.String("guild_id", guildID), slog.Any("error", err))
		return nil, false
	}
	return &cfg, true
}

func (s *Store) store(ctx context.Context, guildID string, cfg *domain.GuildConfig) {
	payload := absent
	if cfg != nil {
		data, err := json.Marshal(cfg)
		if err != nil {
			s.log.Warn("guild cache encode failed", slog.String("guild_id", guildID), slog.Any("error", err))
			return
		}
		payload = string(data)
	}

	if err := s.kv.Set(ctx, cacheKey(guildID), payload, s.ttl); err != nil {
		s.log.Warn("guild cache write failed", slog.String("guild_id", guildID), slog.Any("error", err))
	}
}

func cacheKey(guildID string) string {
	return fmt.Sprintf("guild:config:%s", guildID)
}
