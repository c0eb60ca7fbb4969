package middleware

import (
	"log/slog"
	"time"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/internal/ratelimit"
)

// RateLimitMiddleware enforces per-user and per-command sliding windows.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	rules   *ratelimit.Rules
	log     *slog.Logger
	now     func() time.Time
}

// NewRateLimitMiddleware constructs a rate-limit middleware component.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, rules *ratelimit.Rules, log *slog.Logger) *RateLimitMiddleware {
	if log == nil {
		log = slog.Default()
	}

	return &RateLimitMiddleware{
		limiter: limiter,
		rules:   rules,
		log:     log,
		now:     time.Now,
	}
}

// Handle rejects the event with a RateLimited error once any window is full.
// Limiter failures let the event through.
func (m *RateLimitMiddleware) Handle(next handlers.Handler) handlers.Handler {
	return func(e *handlers.Event) error {
		if m.limiter == nil || m.rules == nil || !m.rules.Enabled() {
			return next(e)
		}

		userID := e.Sender.ID
		if userID == "" || m.rules.IsWhitelisted(userID) {
			return next(e)
		}

		if rule, ok := m.rules.PerUser(); ok {
			if err := m.check(e, "user:"+userID, rule); err != nil {
				return err
			}
		}
		if rule, ok := m.rules.Command(e.Command); ok {
			if err := m.check(e, "cmd:"+e.Command+":"+userID, rule); err != nil {
				return err
			}
		}

		return next(e)
	}
}

func (m *RateLimitMiddleware) check(e *handlers.Event, key string, rule ratelimit.Rule) error {
	result, err := m.limiter.Check(e.Context(), key, rule.Limit, rule.Window)
	if err != nil && result == nil {
		m.log.Warn("rate limiter error", slog.String("key", key), slog.Any("error", err))
		return nil
	}
	if result.Allowed {
		return nil
	}

	m.log.Info("rate limit exceeded", slog.String("key", key), slog.String("command", e.Command))
	return apperrors.NewRateLimitError(result.RetryAfter(m.now()))
}
