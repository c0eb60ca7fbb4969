package logger

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const masked = "***"

var sensitiveKeys = []string{
	"password",
	"token",
	"secret",
	"authorization",
	"dsn",
}

// Bot credentials that end up inside error strings, e.g. a Telegram API URL
// ("bot123456:AA...") or a Discord "Bot <token>" header echoed by a failed
// request.
var credentialPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{6,12}:[A-Za-z0-9_-]{30,}`),
	regexp.MustCompile(`Bot [A-Za-z0-9_-]{20,}\.[A-Za-z0-9_-]{4,}\.[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`password=\S+`),
}

// MaskingHandler hides credentials before records reach the wrapped handler:
// attributes named like a secret lose their value, and string values are
// scrubbed of token-shaped substrings.
type MaskingHandler struct {
	next slog.Handler
}

func NewMaskingHandler(next slog.Handler) *MaskingHandler {
	return &MaskingHandler{next: next}
}

func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = mask(a)
	}
	return &MaskingHandler{next: h.next.WithAttrs(clean)}
}

func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{next: h.next.WithGroup(name)}
}

func (h *MaskingHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, scrub(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(mask(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func mask(a slog.Attr) slog.Attr {
	if secretKey(a.Key) {
		return slog.String(a.Key, masked)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		children := a.Value.Group()
		out := make([]any, len(children))
		for i, c := range children {
			out[i] = mask(c)
		}
		return slog.Group(a.Key, out...)
	case slog.KindString:
		return slog.String(a.Key, scrub(a.Value.String()))
	case slog.KindAny:
		// Errors stay typed for the Sentry handler unless they leak a secret.
		if err, ok := a.Value.Any().(error); ok {
			if clean := scrub(err.Error()); clean != err.Error() {
				return slog.String(a.Key, clean)
			}
		}
	}
	return a
}

func scrub(s string) string {
	for _, re := range credentialPatterns {
		s = re.ReplaceAllString(s, masked)
	}
	return s
}

func secretKey(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if key == s || strings.HasSuffix(key, "_"+s) {
			return true
		}
	}
	return false
}
