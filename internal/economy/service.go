// Package economy implements the guild ledger: balances, cooldown-gated
// actions, games, marriages, loans, jobs and the shop. Every mutation runs
// through the profile store's Update/UpdatePair, which serialize writers of
// the same record and commit two-party changes atomically.
package economy

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/internal/repository"
	"github.com/Proton-105/econ-bot/internal/session"
)

// Random is the source of every draw the ledger makes. Float64 returns a
// value in [0, 1).
type Random interface {
	Float64() float64
}

type systemRandom struct{}

func (systemRandom) Float64() float64 { return rand.Float64() }

// Reminder schedules the loan due-date notification.
type Reminder interface {
	ScheduleLoanReminder(ctx context.Context, key domain.Key, due time.Time) error
}

type noopReminder struct{}

func (noopReminder) ScheduleLoanReminder(context.Context, domain.Key, time.Time) error { return nil }

// Scope locates an interactive session.
type Scope = session.Scope

// Target is the other party of a two-party command.
type Target struct {
	UserID string
	Bot    bool
}

// Service is the ledger entry point used by command handlers and jobs.
type Service struct {
	profiles repository.ProfileStore
	guilds   repository.GuildStore
	sessions session.Store
	reminder Reminder
	rnd      Random
	now      func() time.Time
	log      *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithRandom replaces the random source, mainly for tests.
func WithRandom(r Random) Option {
	return func(s *Service) {
		if r != nil {
			s.rnd = r
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReminder wires loan reminder scheduling.
func WithReminder(r Reminder) Option {
	return func(s *Service) {
		if r != nil {
			s.reminder = r
		}
	}
}

// NewService constructs the ledger service.
func NewService(
	profiles repository.ProfileStore,
	guilds repository.GuildStore,
	sessions session.Store,
	log *slog.Logger,
	opts ...Option,
) *Service {
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		profiles: profiles,
		guilds:   guilds,
		sessions: sessions,
		reminder: noopReminder{},
		rnd:      systemRandom{},
		now:      time.Now,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Guild returns the guild configuration, or nil when the guild never ran setup.
func (s *Service) Guild(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	cfg, err := s.guilds.Get(ctx, guildID)
	if err != nil {
		return nil, s.storeErr("guild.get", err)
	}
	return cfg, nil
}

// Balance returns the caller's profile, creating it on first use.
func (s *Service) Balance(ctx context.Context, key domain.Key) (*domain.Profile, error) {
	p, err := s.profiles.GetOrCreate(ctx, key)
	if err != nil {
		return nil, s.storeErr("balance", err)
	}
	return p, nil
}

// Inventory returns the caller's purchased items.
func (s *Service) Inventory(ctx context.Context, key domain.Key) ([]domain.Item, error) {
	p, err := s.Balance(ctx, key)
	if err != nil {
		return nil, err
	}
	return p.Items, nil
}

// MaxLeaderboard caps how many profiles a leaderboard query returns.
const MaxLeaderboard = 50

// Leaderboard returns the richest profiles of a guild by net worth.
func (s *Service) Leaderboard(ctx context.Context, guildID string, limit int) ([]*domain.Profile, error) {
	if limit <= 0 || limit > MaxLeaderboard {
		limit = 10
	}

	top, err := s.profiles.Top(ctx, guildID, limit)
	if err != nil {
		return nil, s.storeErr("leaderboard", err)
	}
	return top, nil
}

// Setup binds a channel kind to channelID. It is the only GuildConfig mutation.
func (s *Service) Setup(ctx context.Context, guildID string, kind domain.ChannelKind, channelID string) (*domain.GuildConfig, error) {
	cfg, err := s.Guild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &domain.GuildConfig{GuildID: guildID}
	}

	if !cfg.SetChannel(kind, channelID) {
		return nil, apperrors.NewValidationError("unknown_channel_kind",
			"Channel kind must be economy, games or log.", map[string]any{"kind": string(kind)})
	}

	if err := s.guilds.Save(ctx, cfg); err != nil {
		return nil, s.storeErr("guild.save", err)
	}

	s.log.Info("guild channel bound",
		slog.String("guild_id", guildID),
		slog.String("kind", string(kind)),
		slog.String("channel_id", channelID),
	)

	return cfg, nil
}

func (s *Service) guild(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	return s.Guild(ctx, guildID)
}

// storeErr passes AppErrors through and classifies everything else as a
// persistence failure.
func (s *Service) storeErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFoundError("profile_missing", "That user has no profile in this server yet.", nil)
	}

	if errors.Is(err, session.ErrNotFound) {
		return apperrors.NewNotFoundError("session_expired", "This interaction has expired.", nil)
	}

	if errors.Is(err, session.ErrLocked) {
		return apperrors.NewPreconditionError("session_busy", "That action is already being processed.", nil)
	}

	s.log.Error("ledger persistence failed", slog.String("operation", op), slog.Any("error", err))
	return apperrors.NewDatabaseError(err)
}

func validateTarget(actor domain.Key, target Target) error {
	if target.UserID == "" {
		return apperrors.NewValidationError("target_required", "You need to mention a user.", nil)
	}
	if target.Bot || target.UserID == actor.UserID {
		return apperrors.NewValidationError("invalid_target", "You can't target yourself or a bot.", nil)
	}
	return nil
}

func insufficientFunds(have, need int64) error {
	return apperrors.NewPreconditionError("insufficient_funds",
		"You don't have enough coins for that.",
		map[string]any{"have": have, "need": need})
}
