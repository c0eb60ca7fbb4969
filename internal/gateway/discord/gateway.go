// Package discord feeds Discord messages and interactions into the bot.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Proton-105/econ-bot/internal/bot"
	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	"github.com/Proton-105/econ-bot/pkg/config"
)

// DefaultPrefix starts a text command.
const DefaultPrefix = "!"

// Dispatcher processes normalized events.
type Dispatcher interface {
	Handle(e *handlers.Event) error
	Resolve(name string) (string, bool)
}

// Gateway owns the Discord session.
type Gateway struct {
	session  *discordgo.Session
	bot      Dispatcher
	prefix   string
	register bool
	devGuild string
	timeout  time.Duration
	log      *slog.Logger

	ctx context.Context
}

// New creates a gateway; nothing connects until Start.
func New(cfg config.DiscordConfig, d Dispatcher, log *slog.Logger) (*Gateway, error) {
	if log == nil {
		log = slog.Default()
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	session.StateEnabled = true

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &Gateway{
		session:  session,
		bot:      d,
		prefix:   prefix,
		register: cfg.RegisterCommands,
		devGuild: cfg.DevGuildID,
		timeout:  30 * time.Second,
		log:      log.With(slog.String("gateway", "discord")),
		ctx:      context.Background(),
	}, nil
}

// Session exposes the underlying session, e.g. for a notifier.
func (g *Gateway) Session() *discordgo.Session {
	return g.session
}

// Start opens the websocket and, when enabled, registers slash commands.
// Events are handled with contexts derived from ctx.
func (g *Gateway) Start(ctx context.Context) error {
	g.ctx = ctx

	g.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		g.log.Info("discord session ready", slog.String("user", r.User.Username), slog.Int("guilds", len(r.Guilds)))
	})
	g.session.AddHandler(g.onMessage)
	g.session.AddHandler(g.onInteraction)

	if err := g.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	if g.register {
		if err := g.registerCommands(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gateway) registerCommands() error {
	if g.session.State == nil || g.session.State.User == nil {
		return errors.New("discord session has no application user")
	}

	registered, err := g.session.ApplicationCommandBulkOverwrite(g.session.State.User.ID, g.devGuild, ApplicationCommands(bot.Commands))
	if err != nil {
		return fmt.Errorf("register slash commands: %w", err)
	}

	g.log.Info("slash commands registered", slog.Int("count", len(registered)), slog.String("guild_id", g.devGuild))
	return nil
}

// Close disconnects the session.
func (g *Gateway) Close() error {
	return g.session.Close()
}

// HealthCheck reports whether the websocket is connected.
func (g *Gateway) HealthCheck(context.Context) error {
	if !g.session.DataReady {
		return errors.New("discord session is not connected")
	}
	return nil
}

// dispatch runs the event with a bounded context. Errors were already
// replied to by the middleware chain.
func (g *Gateway) dispatch(e *handlers.Event) {
	ctx, cancel := context.WithTimeout(g.ctx, g.timeout)
	defer cancel()

	if err := g.bot.Handle(e.WithContext(ctx)); err != nil {
		g.log.Debug("event rejected",
			slog.String("command", e.Command),
			slog.String("event_id", e.ID),
			slog.Any("error", err),
		)
	}
}

// isAdmin reports whether userID may manage the guild in channelID.
func (g *Gateway) isAdmin(userID, channelID string) bool {
	perms, err := g.session.State.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false
	}
	return hasAdmin(perms)
}

func hasAdmin(perms int64) bool {
	return perms&(discordgo.PermissionAdministrator|discordgo.PermissionManageGuild) != 0
}

func toUser(u *discordgo.User) handlers.User {
	if u == nil {
		return handlers.User{}
	}
	name := u.GlobalName
	if name == "" {
		name = u.Username
	}
	return handlers.User{ID: u.ID, Name: name, Bot: u.Bot}
}
