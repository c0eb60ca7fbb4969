package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

// Recovery catches panics, reports them via the centralized handler, and notifies the user.
func Recovery(log *slog.Logger, errHandler *apperrors.Handler) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(e *handlers.Event) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				log.Error("panic recovered in handler",
					slog.Any("panic", r),
					slog.String("command", e.Command),
					slog.String("stack", string(debug.Stack())),
				)

				userMsg := e.TOr("errors.generic", "⚠️ Something went wrong. Please try again later.")
				if errHandler != nil {
					errHandler.Handle(e.Context(), fmt.Errorf("panic recovered: %v", r))
				}

				if sendErr := e.Respond(handlers.Response{Text: userMsg, Ephemeral: true, Color: handlers.ColorDanger}); sendErr != nil {
					log.Error("failed to notify user about panic", slog.Any("error", sendErr))
				}

				err = nil
			}()

			return next(e)
		}
	}
}
