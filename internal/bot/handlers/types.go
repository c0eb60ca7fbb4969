package handlers

import (
	"context"
	"strings"

	"github.com/Proton-105/econ-bot/internal/bot/keyboard"
	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/economy"
	"github.com/Proton-105/econ-bot/internal/i18n"
)

// Platform names the gateway an event arrived through.
type Platform string

const (
	PlatformDiscord  Platform = "discord"
	PlatformTelegram Platform = "telegram"
)

// User is a chat account as seen by a gateway.
type User struct {
	ID   string
	Name string
	Bot  bool
}

// Field is one name/value pair of a rich reply.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Response is a transport-neutral reply. Gateways render Title and Fields as
// an embed where supported and as plain lines otherwise.
type Response struct {
	Text      string
	Title     string
	Fields    []Field
	Color     int
	Buttons   keyboard.Markup
	Ephemeral bool
	// Edit replaces the message that carried the pressed button.
	Edit bool
}

// Colors used by replies.
const (
	ColorInfo    = 0x5865F2
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
	ColorDanger  = 0xED4245
)

// Event is one inbound command or button press, normalized by a gateway.
type Event struct {
	ctx context.Context

	Platform  Platform
	// ID is the gateway delivery ID used for duplicate suppression.
	ID        string
	GuildID   string
	ChannelID string
	Sender    User
	Admin     bool
	Command   string
	Args      []string
	Mentions  []User
	// Callback holds the raw button data; it is empty for commands.
	Callback string
	Locale   string

	Translator i18n.Translator
	Reply      func(Response) error
}

// Context returns the event context, never nil.
func (e *Event) Context() context.Context {
	if e.ctx != nil {
		return e.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of e carrying ctx.
func (e *Event) WithContext(ctx context.Context) *Event {
	if ctx == nil {
		panic("nil context")
	}
	e2 := new(Event)
	*e2 = *e
	e2.ctx = ctx
	return e2
}

// Key is the ledger key of the sender in the event's guild.
func (e *Event) Key() domain.Key {
	return domain.Key{UserID: e.Sender.ID, GuildID: e.GuildID}
}

// Scope is the session scope of the event's channel.
func (e *Event) Scope() economy.Scope {
	return economy.Scope{GuildID: e.GuildID, ChannelID: e.ChannelID}
}

// Target returns the first mentioned user; ok is false when nobody was mentioned.
func (e *Event) Target() (economy.Target, bool) {
	if len(e.Mentions) == 0 {
		return economy.Target{}, false
	}
	m := e.Mentions[0]
	return economy.Target{UserID: m.ID, Bot: m.Bot}, true
}

// Arg returns the i-th argument or "".
func (e *Event) Arg(i int) string {
	if i < 0 || i >= len(e.Args) {
		return ""
	}
	return strings.TrimSpace(e.Args[i])
}

// IsCallback reports whether the event is a button press.
func (e *Event) IsCallback() bool {
	return e.Callback != ""
}

// T translates key in the event locale.
func (e *Event) T(key string) string {
	if e.Translator == nil {
		return key
	}
	return e.Translator.T(key)
}

// TOr translates key, returning fallback when the catalog has no entry.
func (e *Event) TOr(key, fallback string) string {
	if text := e.T(key); text != key && text != "" {
		return text
	}
	return fallback
}

// Tf translates key and fills placeholders from args.
func (e *Event) Tf(key string, args map[string]any) string {
	return i18n.Format(e.T(key), args)
}

// Send replies with plain text.
func (e *Event) Send(text string) error {
	return e.Respond(Response{Text: text})
}

// Respond replies with r; events without a reply sink drop it.
func (e *Event) Respond(r Response) error {
	if e.Reply == nil {
		return nil
	}
	return e.Reply(r)
}

// Handler processes a command or callback event.
type Handler func(e *Event) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler
