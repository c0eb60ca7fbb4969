package errors

import (
	"context"
	"errors"
	"log/slog"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/econ-bot/pkg/logger"
	"github.com/Proton-105/econ-bot/pkg/metrics"
)

// Outcome is the rejection shown for a failed command. Key and Args select
// a catalog entry under "errors."; Message is the untranslated fallback.
type Outcome struct {
	Message   string
	Key       string
	Args      map[string]any
	Retryable bool
}

// Handler logs command failures, counts them, and forwards infrastructure
// failures to Sentry. Rejections such as insufficient funds are ordinary
// traffic and never reach Sentry.
type Handler struct {
	log           *slog.Logger
	sentryEnabled bool
}

func NewHandler(log *slog.Logger, sentryEnabled bool) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, sentryEnabled: sentryEnabled}
}

func (h *Handler) Handle(ctx context.Context, err error) Outcome {
	if err == nil {
		return Outcome{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var appErr *AppError
	if !errors.As(err, &appErr) || appErr == nil {
		appErr = &AppError{
			Code:     "E000",
			Kind:     KindExternal,
			Message:  err.Error(),
			Key:      "generic",
			Severity: SeverityHigh,
			cause:    err,
		}
	}

	attrs := []slog.Attr{
		slog.String("code", appErr.Code),
		slog.String("kind", string(appErr.Kind)),
		slog.String("severity", string(appErr.Severity)),
		slog.Any("error", err),
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		attrs = append(attrs, slog.String("correlation_id", id))
	}
	h.log.LogAttrs(ctx, levelFor(appErr.Severity), "command failed", attrs...)
	metrics.RecordError(string(appErr.Kind), string(appErr.Severity))

	if h.sentryEnabled && (appErr.Severity == SeverityHigh || appErr.Severity == SeverityCritical) {
		report(ctx, appErr, err)
	}

	msg := appErr.UserMessage
	if msg == "" || appErr.Kind == KindExternal {
		msg = genericUserMessage
	}
	return Outcome{
		Message:   msg,
		Key:       appErr.Key,
		Args:      appErr.Args,
		Retryable: IsRetryable(err),
	}
}

func report(ctx context.Context, appErr *AppError, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("code", appErr.Code)
		scope.SetTag("kind", string(appErr.Kind))
		if id := logger.CorrelationIDFromContext(ctx); id != "" {
			scope.SetTag("correlation_id", id)
		}
		if appErr.Severity == SeverityCritical {
			scope.SetLevel(sentry.LevelFatal)
		}
		hub.CaptureException(err)
	})
}

// Rejections are expected traffic; only infrastructure failures log as errors.
func levelFor(severity Severity) slog.Level {
	switch severity {
	case SeverityLow:
		return slog.LevelInfo
	case SeverityMedium:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
