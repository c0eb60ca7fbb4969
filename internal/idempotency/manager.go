package idempotency

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

// ErrInProgress is returned while another worker still owns the key.
var ErrInProgress = errors.New("event with this key is already in progress")

const lockTTL = 2 * time.Minute

// Operation is the side-effecting work guarded by a key.
type Operation func(ctx context.Context) error

// Result reports whether the operation ran or was recognised as a redelivery.
type Result struct {
	Duplicate bool
	Status    string
}

// Manager runs an operation at most once per key within the record TTL.
type Manager interface {
	Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error)
}

type manager struct {
	store Store
	log   *slog.Logger
}

func NewManager(store Store, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{
		store: store,
		log:   log,
	}
}

func (m *manager) Execute(ctx context.Context, key string, ttl time.Duration, fn Operation) (*Result, error) {
	if fn == nil {
		return nil, errors.New("operation fn cannot be nil")
	}
	if key == "" {
		return &Result{Status: StatusCompleted}, fn(ctx)
	}

	record, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return &Result{Duplicate: true, Status: record.Status}, nil
	}

	locked, err := m.store.Lock(ctx, key, lockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrInProgress
	}
	defer func() {
		if err := m.store.ReleaseLock(context.WithoutCancel(ctx), key); err != nil {
			m.log.Warn("idempotency lock release failed", slog.String("key", key), slog.Any("error", err))
		}
	}()

	runErr := fn(ctx)

	// A retryable failure leaves no record so a redelivery can try again.
	if runErr != nil && apperrors.IsRetryable(runErr) {
		return &Result{Status: StatusFailed}, runErr
	}

	status := StatusCompleted
	if runErr != nil {
		status = StatusFailed
	}
	if err := m.store.Set(ctx, key, &Record{Status: status, At: time.Now().UTC()}, ttl); err != nil {
		m.log.Error("idempotency record write failed", slog.String("key", key), slog.Any("error", err))
	}

	return &Result{Status: status}, runErr
}
