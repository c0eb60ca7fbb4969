package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

type guildRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewGuildRepository creates a Postgres-backed GuildStore.
func NewGuildRepository(db *sql.DB, log *slog.Logger) GuildStore {
	if log == nil {
		log = slog.Default()
	}

	return &guildRepository{db: db, log: log}
}

// Get retrieves a guild configuration, returning nil when absent.
func (r *guildRepository) Get(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	const query = `
		SELECT doc
		FROM guild_configs
		WHERE guild_id = $1
	`

	var doc []byte
	if err := r.db.QueryRowContext(ctx, query, guildID).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		r.log.Error("failed to fetch guild config", slog.String("guild_id", guildID), slog.Any("error", err))
		return nil, apperrors.NewDatabaseError(fmt.Errorf("select guild config: %w", err))
	}

	var cfg domain.GuildConfig
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Errorf("decode guild config: %w", err))
	}
	return &cfg, nil
}

// Save upserts a guild configuration.
func (r *guildRepository) Save(ctx context.Context, cfg *domain.GuildConfig) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return apperrors.NewDatabaseError(fmt.Errorf("encode guild config: %w", err))
	}

	const upsert = `
		INSERT INTO guild_configs (guild_id, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (guild_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, upsert, cfg.GuildID, doc); err != nil {
		r.log.Error("failed to save guild config", slog.String("guild_id", cfg.GuildID), slog.Any("error", err))
		return apperrors.NewDatabaseError(fmt.Errorf("upsert guild config: %w", err))
	}
	return nil
}
