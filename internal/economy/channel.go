package economy

import (
	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

// ValidateChannel rejects a command issued outside its bound channel. An
// unbound kind is unrestricted and games fall back to the economy binding.
func ValidateChannel(guild *domain.GuildConfig, kind domain.ChannelKind, channelID string) error {
	bound := guild.Channel(kind)
	if bound == "" && kind == domain.ChannelGames {
		bound = guild.Channel(domain.ChannelEconomy)
	}

	if bound == "" || bound == channelID {
		return nil
	}

	return apperrors.NewPreconditionError("wrong_channel",
		"This command can't be used in this channel.",
		map[string]any{"channel": bound})
}
