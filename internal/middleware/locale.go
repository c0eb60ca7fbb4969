package middleware

import (
	"log/slog"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	"github.com/Proton-105/econ-bot/internal/i18n"
)

// Locale picks the reply language: the guild setting first, then the
// client locale reported by the gateway, then the catalog default.
func Locale(catalog *i18n.Manager, guilds GuildSource, log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		return func(e *handlers.Event) error {
			lang := e.Locale
			if guilds != nil && e.GuildID != "" {
				guild, err := guilds.Guild(e.Context(), e.GuildID)
				switch {
				case err != nil:
					log.Debug("guild locale lookup failed", slog.String("guild_id", e.GuildID), slog.Any("error", err))
				case guild != nil && guild.Locale != "":
					lang = guild.Locale
				}
			}

			e.Translator = catalog.Translator(lang)
			e.Locale = e.Translator.Lang()
			return next(e)
		}
	}
}
