// Package telegram feeds Telegram updates into the bot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	"github.com/Proton-105/econ-bot/pkg/config"
)

// Dispatcher processes normalized events.
type Dispatcher interface {
	Handle(e *handlers.Event) error
	Resolve(name string) (string, bool)
}

// Directory resolves typed @usernames.
type Directory interface {
	Remember(ctx context.Context, platform handlers.Platform, username string, u handlers.User) error
	Lookup(ctx context.Context, platform handlers.Platform, username string) (handlers.User, error)
}

// Gateway owns the telebot instance.
type Gateway struct {
	bot       *tele.Bot
	dispatch  Dispatcher
	directory Directory
	timeout   time.Duration
	log       *slog.Logger

	ctx context.Context
}

// New builds a long-polling gateway. directory may be nil, in which case
// only text mentions and replies select a target.
func New(cfg config.TelegramConfig, d Dispatcher, directory Directory, log *slog.Logger) (*Gateway, error) {
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	tb, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
		OnError: func(err error, c tele.Context) {
			log.Error("telegram update failed", slog.Any("error", err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	g := &Gateway{
		bot:       tb,
		dispatch:  d,
		directory: directory,
		timeout:   30 * time.Second,
		log:       log.With(slog.String("gateway", "telegram")),
		ctx:       context.Background(),
	}

	tb.Handle(tele.OnText, g.onText)
	tb.Handle(tele.OnCallback, g.onCallback)
	return g, nil
}

// Bot exposes the telebot instance, e.g. for a notifier.
func (g *Gateway) Bot() *tele.Bot {
	return g.bot
}

// Start polls until Stop is called.
func (g *Gateway) Start(ctx context.Context) {
	g.ctx = ctx
	g.log.Info("telegram polling started", slog.String("bot", g.bot.Me.Username))
	g.bot.Start()
}

// Stop ends polling.
func (g *Gateway) Stop() {
	g.log.Info("stopping telegram bot...")
	g.bot.Stop()
}

// HealthCheck ensures the bot is initialized.
func (g *Gateway) HealthCheck(context.Context) error {
	if g.bot == nil || g.bot.Me == nil {
		return errors.New("telegram bot is not initialized or disconnected")
	}
	return nil
}

func (g *Gateway) onText(c tele.Context) error {
	m := c.Message()
	if m == nil || m.Sender == nil || m.Sender.IsBot {
		return nil
	}

	ctx, cancel := context.WithTimeout(g.ctx, g.timeout)
	defer cancel()

	sender := toUser(m.Sender)
	g.remember(ctx, m.Sender, sender)

	cmd, ok := parseCommand(g.bot.Me.Username, m)
	if !ok {
		return nil
	}
	canonical, known := g.dispatch.Resolve(cmd.name)
	if !known {
		return nil
	}

	e := &handlers.Event{
		Platform:  handlers.PlatformTelegram,
		ID:        strconv.Itoa(c.Update().ID),
		GuildID:   guildID(m.Chat),
		ChannelID: channelID(m.Chat),
		Sender:    sender,
		Command:   cmd.name,
		Args:      cmd.args,
		Mentions:  append(cmd.mentions, g.resolve(ctx, cmd.usernames)...),
		Locale:    m.Sender.LanguageCode,
		Reply: func(r handlers.Response) error {
			opts := sendOptions(r)
			opts.ReplyTo = m
			_, err := g.bot.Send(m.Chat, text(r), opts)
			return err
		},
	}
	if canonical == "setup" {
		e.Admin = g.isAdmin(m.Chat, m.Sender)
	}

	g.handle(e.WithContext(ctx))
	return nil
}

func (g *Gateway) onCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil || cb.Sender == nil || cb.Message == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(g.ctx, g.timeout)
	defer cancel()

	answered := false
	e := &handlers.Event{
		Platform:  handlers.PlatformTelegram,
		ID:        "cb:" + cb.ID,
		GuildID:   guildID(cb.Message.Chat),
		ChannelID: channelID(cb.Message.Chat),
		Sender:    toUser(cb.Sender),
		Callback:  cb.Data,
		Locale:    cb.Sender.LanguageCode,
		Reply: func(r handlers.Response) error {
			switch {
			case r.Ephemeral && !answered:
				answered = true
				return c.Respond(&tele.CallbackResponse{Text: plain(r), ShowAlert: true})
			case r.Edit:
				_, err := g.bot.Edit(cb.Message, text(r), sendOptions(r))
				return err
			default:
				_, err := g.bot.Send(cb.Message.Chat, text(r), sendOptions(r))
				return err
			}
		},
	}

	g.handle(e.WithContext(ctx))

	if !answered {
		return c.Respond()
	}
	return nil
}

func (g *Gateway) handle(e *handlers.Event) {
	if err := g.dispatch.Handle(e); err != nil {
		g.log.Debug("event rejected",
			slog.String("command", e.Command),
			slog.String("event_id", e.ID),
			slog.Any("error", err),
		)
	}
}

func (g *Gateway) remember(ctx context.Context, u *tele.User, as handlers.User) {
	if g.directory == nil || u.Username == "" {
		return
	}
	if err := g.directory.Remember(ctx, handlers.PlatformTelegram, u.Username, as); err != nil {
		g.log.Warn("failed to remember user", slog.Any("error", err))
	}
}

// resolve looks up typed usernames; unknown ones are dropped.
func (g *Gateway) resolve(ctx context.Context, usernames []string) []handlers.User {
	if g.directory == nil {
		return nil
	}

	var out []handlers.User
	for _, name := range usernames {
		u, err := g.directory.Lookup(ctx, handlers.PlatformTelegram, name)
		if err != nil {
			g.log.Debug("username not resolved", slog.String("username", name), slog.Any("error", err))
			continue
		}
		out = append(out, u)
	}
	return out
}

func (g *Gateway) isAdmin(chat *tele.Chat, u *tele.User) bool {
	if chat == nil || chat.Type == tele.ChatPrivate {
		return false
	}
	member, err := g.bot.ChatMemberOf(chat, u)
	if err != nil {
		g.log.Warn("failed to fetch chat member", slog.Any("error", err))
		return false
	}
	return member.Role == tele.Administrator || member.Role == tele.Creator
}

// plain is the alert text: Telegram alerts do not render HTML.
func plain(r handlers.Response) string {
	if r.Text != "" {
		return r.Text
	}
	return r.Title
}
