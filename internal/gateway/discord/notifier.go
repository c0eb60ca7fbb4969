package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// Notifier sends direct messages. Sends are paced so a sweep that reminds
// many borrowers stays under Discord's DM rate limit.
type Notifier struct {
	session *discordgo.Session
	limiter *rate.Limiter
}

// NewNotifier allows perSecond direct messages with a small burst.
func NewNotifier(session *discordgo.Session, perSecond float64) *Notifier {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Notifier{session: session, limiter: rate.NewLimiter(rate.Limit(perSecond), 5)}
}

func (n *Notifier) Notify(ctx context.Context, _, userID, text string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}

	ch, err := n.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm channel: %w", err)
	}
	if _, err := n.session.ChannelMessageSend(ch.ID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send dm: %w", err)
	}
	return nil
}
