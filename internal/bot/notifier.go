package bot

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

// Notifier delivers a direct message outside of a command reply.
type Notifier interface {
	Notify(ctx context.Context, guildID, userID, text string) error
}

// ErrNoNotifier is returned when no gateway can reach the user.
var ErrNoNotifier = errors.New("bot: no notifier for user")

// TelegramPrefix marks user and guild IDs that belong to Telegram.
const TelegramPrefix = "tg:"

// Notifiers routes a notification to the gateway that owns the user ID.
type Notifiers struct {
	Discord  Notifier
	Telegram Notifier
}

func (n Notifiers) Notify(ctx context.Context, guildID, userID, text string) error {
	target := n.Discord
	if strings.HasPrefix(userID, TelegramPrefix) {
		target = n.Telegram
	}
	if target == nil {
		return ErrNoNotifier
	}
	return target.Notify(ctx, guildID, userID, text)
}

// guarded stops calling a gateway that keeps failing.
type guarded struct {
	next    Notifier
	breaker *apperrors.CircuitBreaker
}

// Guard wraps n with breaker. While the breaker is open Notify fails fast
// with apperrors.ErrCircuitOpen.
func Guard(n Notifier, breaker *apperrors.CircuitBreaker) Notifier {
	if n == nil || breaker == nil {
		return n
	}
	return guarded{next: n, breaker: breaker}
}

func (g guarded) Notify(ctx context.Context, guildID, userID, text string) error {
	return g.breaker.Call(func() error {
		return g.next.Notify(ctx, guildID, userID, text)
	})
}
