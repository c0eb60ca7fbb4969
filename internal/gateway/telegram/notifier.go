package telegram

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v3"
)

// Notifier sends private messages, paced to stay under Telegram's
// broadcast limit of about 30 messages per second.
type Notifier struct {
	bot     *tele.Bot
	limiter *rate.Limiter
}

func NewNotifier(bot *tele.Bot, perSecond float64) *Notifier {
	if perSecond <= 0 {
		perSecond = 25
	}
	return &Notifier{bot: bot, limiter: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

func (n *Notifier) Notify(ctx context.Context, _, userID, text string) error {
	id, ok := chatID(userID)
	if !ok {
		return fmt.Errorf("not a telegram user id: %q", userID)
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := n.bot.Send(tele.ChatID(id), text); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
