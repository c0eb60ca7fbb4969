// Package repository persists guild ledgers and guild configuration.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Proton-105/econ-bot/internal/domain"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict indicates a compare-and-set save lost a race.
	ErrVersionConflict = errors.New("version conflict")
)

// MutateFunc edits a profile in place. Returning an error discards every change.
type MutateFunc func(p *domain.Profile) error

// PairFunc edits two profiles atomically.
type PairFunc func(first, second *domain.Profile) error

// PairOptions tunes UpdatePair.
type PairOptions struct {
	// CreateSecond creates the second profile on first use. Without it a
	// missing second profile yields ErrNotFound. The first profile is always
	// created lazily.
	CreateSecond bool
}

// ProfileStore persists profiles. Update and UpdatePair serialize concurrent
// writers of the same key, so read-modify-write cycles never lose updates.
type ProfileStore interface {
	Get(ctx context.Context, key domain.Key) (*domain.Profile, error)
	GetOrCreate(ctx context.Context, key domain.Key) (*domain.Profile, error)
	// Save writes p if its Version is still current; Version 0 inserts.
	Save(ctx context.Context, p *domain.Profile) error
	Update(ctx context.Context, key domain.Key, fn MutateFunc) (*domain.Profile, error)
	UpdatePair(ctx context.Context, first, second domain.Key, opts PairOptions, fn PairFunc) (*domain.Profile, *domain.Profile, error)
	// Top orders a guild's profiles by net worth, descending.
	Top(ctx context.Context, guildID string, limit int) ([]*domain.Profile, error)
	// LoansDue returns active loans due at or before the given time.
	LoansDue(ctx context.Context, before time.Time) ([]*domain.Profile, error)
	// ActiveLoans returns every active loan with a due date.
	ActiveLoans(ctx context.Context) ([]*domain.Profile, error)
}

// GuildStore persists guild configuration.
type GuildStore interface {
	// Get returns nil, nil when the guild never ran setup.
	Get(ctx context.Context, guildID string) (*domain.GuildConfig, error)
	Save(ctx context.Context, cfg *domain.GuildConfig) error
}
