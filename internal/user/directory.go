// Package user remembers the chat accounts the bot has seen so a typed
// @username can be resolved to a ledger user ID.
package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
)

// DefaultTTL keeps an entry for a month after the user was last seen.
const DefaultTTL = 30 * 24 * time.Hour

// ErrUnknown is returned when a username was never seen.
var ErrUnknown = errors.New("user: unknown username")

// KV is the subset of the Redis client the directory needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Directory maps usernames to users per platform.
type Directory struct {
	kv  KV
	ttl time.Duration
	log *slog.Logger
}

// NewDirectory builds a Directory over kv.
func NewDirectory(kv KV, log *slog.Logger) *Directory {
	if log == nil {
		log = slog.Default()
	}
	return &Directory{kv: kv, ttl: DefaultTTL, log: log}
}

// Remember records u under username. Accounts without a username are skipped.
func (d *Directory) Remember(ctx context.Context, platform handlers.Platform, username string, u handlers.User) error {
	name := normalize(username)
	if name == "" || u.ID == "" {
		return nil
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := d.kv.Set(ctx, key(platform, name), string(data), d.ttl); err != nil {
		d.logError("remember", name, err)
		return fmt.Errorf("remember user: %w", err)
	}
	return nil
}

// Lookup resolves username, with or without the leading @.
func (d *Directory) Lookup(ctx context.Context, platform handlers.Platform, username string) (handlers.User, error) {
	name := normalize(username)
	if name == "" {
		return handlers.User{}, ErrUnknown
	}

	raw, err := d.kv.Get(ctx, key(platform, name))
	if errors.Is(err, goredis.Nil) {
		return handlers.User{}, ErrUnknown
	}
	if err != nil {
		d.logError("lookup", name, err)
		return handlers.User{}, fmt.Errorf("lookup user: %w", err)
	}

	var u handlers.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return handlers.User{}, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

func (d *Directory) logError(operation, username string, err error) {
	d.log.Error("user directory operation failed",
		slog.String("operation", operation),
		slog.String("username", username),
		slog.Any("error", err),
	)
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

func key(platform handlers.Platform, username string) string {
	return fmt.Sprintf("user:%s:%s", platform, username)
}
