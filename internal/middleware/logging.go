package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	"github.com/Proton-105/econ-bot/pkg/logger"
)

// Logging attaches a correlation ID to the event context and logs each
// event with its outcome.
func Logging(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(e *handlers.Event) error {
			ctx := logger.WithCorrelationID(e.Context())
			e = e.WithContext(ctx)

			attrs := []any{
				slog.String("platform", string(e.Platform)),
				slog.String("guild_id", e.GuildID),
				slog.String("user_id", e.Sender.ID),
				slog.String("command", e.Command),
				slog.String("correlation_id", logger.CorrelationIDFromContext(ctx)),
			}

			start := time.Now()
			log.Debug("handling event", attrs...)
			err := next(e)
			log.Info("handled event", append(attrs,
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)...)

			return err
		}
	}
}

// HTTP creates an HTTP middleware that logs request and response details.
func HTTP(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logger.WithCorrelationID(r.Context())

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			statusCode := ww.Status()
			if statusCode == 0 {
				statusCode = http.StatusOK
			}

			log.Debug(
				"handled http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", statusCode),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("correlation_id", logger.CorrelationIDFromContext(ctx)),
			)
		})
	}
}
