package logger

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation ID in and out of HTTP calls.
const RequestIDHeader = "X-Request-ID"

type correlationIDKey struct{}

// CorrelationIDFromContext returns the ID stored by WithCorrelationID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

// WithCorrelationID tags ctx with a new ID unless it already has one. Every
// chat event gets one at dispatch so its log lines and Sentry reports can be
// joined.
func WithCorrelationID(ctx context.Context) context.Context {
	if CorrelationIDFromContext(ctx) != "" {
		return ctx
	}
	return ContextWithCorrelationID(ctx, uuid.NewString())
}

// ContextWithCorrelationID stores a known ID, e.g. one received from a caller.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// Middleware reuses the caller's X-Request-ID when it is a UUID, otherwise
// mints one, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id, err := uuid.Parse(r.Header.Get(RequestIDHeader)); err == nil {
			ctx = ContextWithCorrelationID(ctx, id.String())
		} else {
			ctx = WithCorrelationID(ctx)
		}
		w.Header().Set(RequestIDHeader, CorrelationIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
