package middleware

import (
	"time"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/pkg/metrics"
)

// Metrics measures execution time and status for bot handlers, reporting them to Prometheus.
func Metrics(next handlers.Handler) handlers.Handler {
	return func(e *handlers.Event) error {
		start := time.Now()
		err := next(e)

		command := e.Command
		if command == "" {
			command = "unknown"
		}

		status := "ok"
		if err != nil {
			status = string(apperrors.KindOf(err))
		}

		metrics.RecordCommand(command, string(e.Platform), status, time.Since(start))

		return err
	}
}
