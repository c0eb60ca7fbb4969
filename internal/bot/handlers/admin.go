package handlers

import (
	"strings"

	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/economy"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

// NewSetupHandler binds a channel kind to a channel. Without a channel
// argument the current channel is bound.
func NewSetupHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		if !e.Admin {
			return apperrors.NewPreconditionError("admin_only", "Only server administrators can do that.", nil)
		}

		channelID := channelArg(e.Arg(1))
		if channelID == "" {
			channelID = e.ChannelID
		}

		kind := domain.ChannelKind(strings.ToLower(e.Arg(0)))
		if _, err := svc.Setup(e.Context(), e.GuildID, kind, channelID); err != nil {
			return err
		}
		return e.success(e.T("setup.title"), e.Tf("setup.bound", map[string]any{
			"kind":    e.T("setup.kinds." + string(kind)),
			"channel": channelMention(e.Platform, channelID),
		}))
	}
}

// channelArg accepts a raw ID or a Discord channel mention.
func channelArg(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "<#") && strings.HasSuffix(raw, ">") {
		return raw[2 : len(raw)-1]
	}
	return raw
}

func channelMention(p Platform, channelID string) string {
	if p == PlatformDiscord {
		return "<#" + channelID + ">"
	}
	return channelID
}
