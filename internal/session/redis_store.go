package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPattern  = "session:data:%s:%s:%s"
	sessionScanPattern = "session:data:*"
	lockKeyPattern     = "session:lock:%s:%s:%s"
	lockTTL            = 5 * time.Second

	// expiryGrace keeps expired sessions around long enough for the
	// cleaner to observe and forfeit them.
	expiryGrace = 10 * time.Minute
)

// RedisStore persists sessions in Redis.
type RedisStore struct {
	client *redis.Client
	log    *slog.Logger
	now    func() time.Time
}

// NewRedisStore initializes a Redis-backed Store.
func NewRedisStore(client *redis.Client, log *slog.Logger) *RedisStore {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStore{client: client, log: log, now: time.Now}
}

// Create stores the session with a TTL derived from ExpiresAt.
func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	return s.write(ctx, sess)
}

// Get loads a live session.
func (s *RedisStore) Get(ctx context.Context, scope Scope, id string) (*Session, error) {
	sess, err := s.load(ctx, sessionKey(scope, id))
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return sess, nil
}

// Save overwrites an existing live session.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	exists, err := s.client.Exists(ctx, sessionKey(sess.Scope, sess.ID)).Result()
	if err != nil {
		s.log.Error("failed to check session", "session_id", sess.ID, "error", err)
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	return s.write(ctx, sess)
}

// Delete removes the session.
func (s *RedisStore) Delete(ctx context.Context, scope Scope, id string) error {
	removed, err := s.client.Del(ctx, sessionKey(scope, id)).Result()
	if err != nil {
		s.log.Error("failed to delete session", "session_id", id, "error", err)
		return err
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// Lock acquires a short SETNX lock on the session.
func (s *RedisStore) Lock(ctx context.Context, scope Scope, id string) (func(), error) {
	key := fmt.Sprintf(lockKeyPattern, scope.GuildID, scope.ChannelID, id)

	acquired, err := s.client.SetNX(ctx, key, 1, lockTTL).Result()
	if err != nil {
		s.log.Error("failed to acquire session lock", "session_id", id, "error", err)
		return nil, err
	}
	if !acquired {
		s.log.Warn("session lock already held", "session_id", id)
		return nil, ErrLocked
	}

	return func() {
		if err := s.client.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
			s.log.Error("failed to release session lock", "session_id", id, "error", err)
		}
	}, nil
}

// List scans every stored session.
func (s *RedisStore) List(ctx context.Context) ([]*Session, error) {
	var (
		cursor uint64
		result []*Session
	)

	for {
		keys, next, err := s.client.Scan(ctx, cursor, sessionScanPattern, 100).Result()
		if err != nil {
			s.log.Error("failed to scan sessions", "error", err)
			return nil, err
		}

		for _, key := range keys {
			sess, err := s.load(ctx, key)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					continue
				}
				s.log.Warn("skipping unreadable session", "key", key, "error", err)
				continue
			}
			result = append(result, sess)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return result, nil
}

func (s *RedisStore) write(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		s.log.Error("failed to encode session", "session_id", sess.ID, "error", err)
		return err
	}

	ttl := sess.ExpiresAt.Sub(s.now()) + expiryGrace
	if ttl <= 0 {
		ttl = expiryGrace
	}

	if err := s.client.Set(ctx, sessionKey(sess.Scope, sess.ID), data, ttl).Err(); err != nil {
		s.log.Error("failed to save session", "session_id", sess.ID, "error", err)
		return err
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, key string) (*Session, error) {
	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		s.log.Error("failed to get session", "key", key, "error", err)
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		s.log.Error("failed to decode session", "key", key, "error", err)
		return nil, err
	}
	return &sess, nil
}

func sessionKey(scope Scope, id string) string {
	return fmt.Sprintf(sessionKeyPattern, scope.GuildID, scope.ChannelID, id)
}
