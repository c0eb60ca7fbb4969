package middleware

import (
	"log/slog"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/internal/i18n"
)

// ErrorHandling turns handler failures into a single rejection reply.
// The reply is localized from the outcome's key, falling back to its
// untranslated message.
func ErrorHandling(errHandler *apperrors.Handler, log *slog.Logger) handlers.Middleware {
	if errHandler == nil {
		errHandler = apperrors.NewHandler(log, false)
	}
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(e *handlers.Event) error {
			err := next(e)
			if err == nil {
				return nil
			}

			text := localize(e, errHandler.Handle(e.Context(), err))

			if sendErr := e.Respond(handlers.Response{Text: text, Ephemeral: true, Color: handlers.ColorDanger}); sendErr != nil {
				log.Warn("failed to deliver rejection", slog.String("command", e.Command), slog.Any("error", sendErr))
			}

			// Errors are returned so outer middlewares can record the outcome.
			return err
		}
	}
}

func localize(e *handlers.Event, out apperrors.Outcome) string {
	key := out.Key
	if key == "" {
		key = "generic"
	}
	if text := e.TOr("errors."+key, ""); text != "" {
		return i18n.Format(text, out.Args)
	}
	if out.Message != "" {
		return out.Message
	}
	return e.T("errors.generic")
}
