package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskingHandler_MasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

	log.Info("connecting",
		slog.String("discord_token", "abc123"),
		slog.String("user_id", "42"),
		slog.Group("db", slog.String("password", "hunter2")),
	)

	out := buf.String()
	assert.NotContains(t, out, "abc123")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "user_id=42")
}

func TestFanoutHandler_RespectsLevels(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer
	h := NewFanoutHandler(
		slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h)

	log.Info("deposit")
	log.Error("store failed")

	assert.Contains(t, infoBuf.String(), "deposit")
	assert.Contains(t, infoBuf.String(), "store failed")
	assert.NotContains(t, errBuf.String(), "deposit")
	assert.Contains(t, errBuf.String(), "store failed")
}

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background())
	id := CorrelationIDFromContext(ctx)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, CorrelationIDFromContext(WithCorrelationID(ctx)))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestMaskingHandler_ScrubsTokensInValues(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewTextHandler(&buf, nil)))

	leak := errors.New(`Post "https://api.telegram.org/bot123456789:AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw/sendMessage": timeout`)
	log.Error("notify failed", slog.Any("error", leak), slog.String("url", "host=db password=hunter2"))

	out := buf.String()
	assert.NotContains(t, out, "AAHdqTcvCH1vGWJxfSeofSAs0K5PALDsaw")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "sendMessage")
}

func TestMiddleware_PropagatesRequestID(t *testing.T) {
	var seen string
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = CorrelationIDFromContext(r.Context())
	}))

	const id = "0b8a5a3e-6f35-4d5c-9a0e-3f4b2a1c9d70"
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, seen)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", seen)
	assert.NotEmpty(t, seen)
}
