package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	"github.com/Proton-105/econ-bot/internal/idempotency"
)

const eventKeyTTL = 24 * time.Hour

// Idempotency ensures handlers execute at most once per gateway delivery.
func Idempotency(manager idempotency.Manager, log *slog.Logger) handlers.Middleware {
	if manager == nil {
		return func(next handlers.Handler) handlers.Handler {
			return next
		}
	}
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(e *handlers.Event) error {
			if e.ID == "" {
				return next(e)
			}
			key := idempotency.EventKey(string(e.Platform), e.ID)

			var handlerErr error
			result, err := manager.Execute(e.Context(), key, eventKeyTTL, func(execCtx context.Context) error {
				handlerErr = next(e.WithContext(execCtx))
				return handlerErr
			})
			switch {
			case errors.Is(err, idempotency.ErrInProgress):
				log.Debug("event already in progress", slog.String("event_id", e.ID))
				return nil
			case result != nil && result.Duplicate:
				log.Info("duplicate event dropped", slog.String("event_id", e.ID), slog.String("status", result.Status))
				return nil
			case handlerErr != nil:
				return handlerErr
			case err != nil:
				log.Error("idempotency check failed", slog.String("event_id", e.ID), slog.Any("error", err))
				return next(e)
			}
			return nil
		}
	}
}
