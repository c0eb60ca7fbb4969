package middleware

import (
	"context"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/economy"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

// GuildSource resolves a guild's configuration; nil means setup never ran.
type GuildSource interface {
	Guild(ctx context.Context, guildID string) (*domain.GuildConfig, error)
}

// ChannelGuard rejects commands used outside a guild or outside the channel
// their kind is bound to. Commands missing from kinds are unrestricted, and
// commands listed in global also work in direct messages.
func ChannelGuard(guilds GuildSource, kinds map[string]domain.ChannelKind, global ...string) handlers.Middleware {
	anywhere := make(map[string]struct{}, len(global))
	for _, name := range global {
		anywhere[name] = struct{}{}
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(e *handlers.Event) error {
			if _, ok := anywhere[e.Command]; ok {
				return next(e)
			}
			if e.GuildID == "" {
				return apperrors.NewPreconditionError("guild_only", "This command only works in a server.", nil)
			}

			kind, ok := kinds[e.Command]
			if !ok {
				return next(e)
			}

			guild, err := guilds.Guild(e.Context(), e.GuildID)
			if err != nil {
				return err
			}
			if err := economy.ValidateChannel(guild, kind, e.ChannelID); err != nil {
				return err
			}

			return next(e)
		}
	}
}
