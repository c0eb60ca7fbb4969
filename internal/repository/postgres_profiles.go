package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

type profileRepository struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// NewProfileRepository creates a Postgres-backed ProfileStore. Profiles are
// stored as JSONB documents keyed by (user_id, guild_id); the loan due date
// and net worth are mirrored into columns for the sweep and the leaderboard.
func NewProfileRepository(db *sql.DB, log *slog.Logger) ProfileStore {
	if log == nil {
		log = slog.Default()
	}

	return &profileRepository{db: db, log: log, now: time.Now}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *profileRepository) Get(ctx context.Context, key domain.Key) (*domain.Profile, error) {
	const query = `
		SELECT doc, version
		FROM profiles
		WHERE user_id = $1 AND guild_id = $2
	`

	p, err := scanProfile(r.db.QueryRowContext(ctx, query, key.UserID, key.GuildID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, r.fail("select profile", key, err)
	}
	return p, nil
}

func (r *profileRepository) GetOrCreate(ctx context.Context, key domain.Key) (*domain.Profile, error) {
	if err := r.ensure(ctx, r.db, key); err != nil {
		return nil, err
	}
	return r.Get(ctx, key)
}

func (r *profileRepository) Save(ctx context.Context, p *domain.Profile) error {
	if p.Version == 0 {
		doc, err := r.encode(p)
		if err != nil {
			return err
		}

		const insert = `
			INSERT INTO profiles (user_id, guild_id, doc, version, loan_due_at, net_worth, updated_at)
			VALUES ($1, $2, $3, 1, $4, $5, $6)
			ON CONFLICT (user_id, guild_id) DO NOTHING
		`
		res, err := r.db.ExecContext(ctx, insert, p.UserID, p.GuildID, doc, loanDue(p), p.NetWorth(), p.UpdatedAt)
		if err != nil {
			return r.fail("insert profile", p.Key(), err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrVersionConflict
		}
		p.Version = 1
		return nil
	}

	return r.write(ctx, r.db, p)
}

func (r *profileRepository) Update(ctx context.Context, key domain.Key, fn MutateFunc) (*domain.Profile, error) {
	var out *domain.Profile

	err := apperrors.WithRetry(ctx, func() error {
		return r.inTx(ctx, func(tx *sql.Tx) error {
			if err := r.ensure(ctx, tx, key); err != nil {
				return err
			}

			locked, err := r.lock(ctx, tx, key)
			if err != nil {
				return err
			}
			p := locked[key]

			if err := fn(p); err != nil {
				return err
			}
			if err := r.write(ctx, tx, p); err != nil {
				return err
			}

			out = p
			return nil
		})
	})

	return out, err
}

func (r *profileRepository) UpdatePair(ctx context.Context, first, second domain.Key, opts PairOptions, fn PairFunc) (*domain.Profile, *domain.Profile, error) {
	var a, b *domain.Profile

	err := apperrors.WithRetry(ctx, func() error {
		return r.inTx(ctx, func(tx *sql.Tx) error {
			if err := r.ensure(ctx, tx, first); err != nil {
				return err
			}
			if opts.CreateSecond {
				if err := r.ensure(ctx, tx, second); err != nil {
					return err
				}
			}

			locked, err := r.lock(ctx, tx, first, second)
			if err != nil {
				return err
			}

			pa, pb := locked[first], locked[second]
			if pb == nil {
				return ErrNotFound
			}

			if err := fn(pa, pb); err != nil {
				return err
			}
			if err := r.write(ctx, tx, pa); err != nil {
				return err
			}
			if err := r.write(ctx, tx, pb); err != nil {
				return err
			}

			a, b = pa, pb
			return nil
		})
	})

	return a, b, err
}

func (r *profileRepository) Top(ctx context.Context, guildID string, limit int) ([]*domain.Profile, error) {
	const query = `
		SELECT doc, version
		FROM profiles
		WHERE guild_id = $1
		ORDER BY net_worth DESC, user_id
		LIMIT $2
	`
	return r.list(ctx, "select leaderboard", query, guildID, limit)
}

func (r *profileRepository) LoansDue(ctx context.Context, before time.Time) ([]*domain.Profile, error) {
	const query = `
		SELECT doc, version
		FROM profiles
		WHERE loan_due_at IS NOT NULL AND loan_due_at <= $1
		ORDER BY loan_due_at
	`
	return r.list(ctx, "select due loans", query, before)
}

func (r *profileRepository) ActiveLoans(ctx context.Context) ([]*domain.Profile, error) {
	const query = `
		SELECT doc, version
		FROM profiles
		WHERE loan_due_at IS NOT NULL
		ORDER BY loan_due_at
	`
	return r.list(ctx, "select active loans", query)
}

func (r *profileRepository) list(ctx context.Context, op, query string, args ...any) ([]*domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.log.Error("profile query failed", slog.String("operation", op), slog.Any("error", err))
		return nil, apperrors.NewDatabaseError(fmt.Errorf("%s: %w", op, err))
	}
	defer rows.Close()

	var out []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError(fmt.Errorf("%s: scan: %w", op, err))
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Errorf("%s: %w", op, err))
	}
	return out, nil
}

// ensure inserts an empty profile for key unless one exists.
func (r *profileRepository) ensure(ctx context.Context, db execer, key domain.Key) error {
	p := domain.NewProfile(key, r.now())
	doc, err := r.encode(p)
	if err != nil {
		return err
	}

	const insert = `
		INSERT INTO profiles (user_id, guild_id, doc, version, net_worth, updated_at)
		VALUES ($1, $2, $3, 1, 0, $4)
		ON CONFLICT (user_id, guild_id) DO NOTHING
	`
	if _, err := db.ExecContext(ctx, insert, key.UserID, key.GuildID, doc, p.UpdatedAt); err != nil {
		return r.fail("ensure profile", key, err)
	}
	return nil
}

// lock row-locks the requested profiles in key order so two transactions
// touching the same pair can never deadlock.
func (r *profileRepository) lock(ctx context.Context, tx *sql.Tx, keys ...domain.Key) (map[domain.Key]*domain.Profile, error) {
	guildID := keys[0].GuildID
	userIDs := make([]string, 0, len(keys))
	for _, k := range keys {
		userIDs = append(userIDs, k.UserID)
	}

	const query = `
		SELECT doc, version
		FROM profiles
		WHERE guild_id = $1 AND user_id = ANY($2)
		ORDER BY user_id
		FOR UPDATE
	`
	rows, err := tx.QueryContext(ctx, query, guildID, pq.Array(userIDs))
	if err != nil {
		return nil, r.fail("lock profiles", keys[0], err)
	}
	defer rows.Close()

	out := make(map[domain.Key]*domain.Profile, len(keys))
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, r.fail("scan locked profile", keys[0], err)
		}
		out[p.Key()] = p
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("lock profiles", keys[0], err)
	}
	return out, nil
}

func (r *profileRepository) write(ctx context.Context, db execer, p *domain.Profile) error {
	p.UpdatedAt = r.now()
	doc, err := r.encode(p)
	if err != nil {
		return err
	}

	const update = `
		UPDATE profiles
		SET doc = $3, version = version + 1, loan_due_at = $4, net_worth = $5, updated_at = $6
		WHERE user_id = $1 AND guild_id = $2 AND version = $7
	`
	res, err := db.ExecContext(ctx, update, p.UserID, p.GuildID, doc, loanDue(p), p.NetWorth(), p.UpdatedAt, p.Version)
	if err != nil {
		return r.fail("update profile", p.Key(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVersionConflict
	}

	p.Version++
	return nil
}

func (r *profileRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewDatabaseError(fmt.Errorf("begin tx: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return apperrors.NewDatabaseError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

func (r *profileRepository) encode(p *domain.Profile) ([]byte, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Errorf("encode profile: %w", err))
	}
	return doc, nil
}

// fail logs and classifies a driver error. Serialization failures and
// deadlocks stay retryable; everything else is still a database error.
func (r *profileRepository) fail(op string, key domain.Key, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqSerializationFailure, pqDeadlockDetected:
			r.log.Warn("profile transaction contention",
				slog.String("operation", op),
				slog.String("user_id", key.UserID),
				slog.String("code", string(pqErr.Code)),
			)
			return apperrors.NewDatabaseError(fmt.Errorf("%s: %w", op, err))
		}
	}

	r.log.Error("profile query failed",
		slog.String("operation", op),
		slog.String("user_id", key.UserID),
		slog.String("guild_id", key.GuildID),
		slog.Any("error", err),
	)
	return apperrors.NewDatabaseError(fmt.Errorf("%s: %w", op, err))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var (
		doc     []byte
		version int64
	)
	if err := row.Scan(&doc, &version); err != nil {
		return nil, err
	}

	var p domain.Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.Version = version
	if p.Cooldowns == nil {
		p.Cooldowns = make(map[domain.Action]int64)
	}
	return &p, nil
}

func loanDue(p *domain.Profile) any {
	if !p.HasActiveLoan() || p.Loan.DueDate == nil {
		return nil
	}
	return *p.Loan.DueDate
}
