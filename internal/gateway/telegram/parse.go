package telegram

import (
	"strconv"
	"strings"
	"unicode/utf16"

	tele "gopkg.in/telebot.v3"

	"github.com/Proton-105/econ-bot/internal/bot"
	"github.com/Proton-105/econ-bot/internal/bot/handlers"
)

type parsedCommand struct {
	name string
	args []string
	// usernames are typed @mentions still to be resolved.
	usernames []string
	mentions  []handlers.User
}

// parseCommand splits "/name@bot args". Commands addressed to another bot
// are ignored. Text mentions carry the user directly; @username mentions
// need a directory lookup.
func parseCommand(botName string, m *tele.Message) (parsedCommand, bool) {
	fields := strings.Fields(m.Text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return parsedCommand{}, false
	}

	name, addressee, _ := strings.Cut(strings.TrimPrefix(fields[0], "/"), "@")
	if name == "" || (addressee != "" && !strings.EqualFold(addressee, botName)) {
		return parsedCommand{}, false
	}

	cmd := parsedCommand{name: strings.ToLower(name)}

	mentioned := make(map[string]bool)
	for _, ent := range m.Entities {
		if ent.Type != tele.EntityTMention || ent.User == nil {
			continue
		}
		cmd.mentions = append(cmd.mentions, toUser(ent.User))
		for _, word := range strings.Fields(entityText(m.Text, ent)) {
			mentioned[word] = true
		}
	}

	for _, f := range fields[1:] {
		switch {
		case mentioned[f]:
		case strings.HasPrefix(f, "@") && len(f) > 1:
			cmd.usernames = append(cmd.usernames, f)
		default:
			cmd.args = append(cmd.args, f)
		}
	}

	if m.ReplyTo != nil && m.ReplyTo.Sender != nil && len(cmd.mentions) == 0 && len(cmd.usernames) == 0 {
		cmd.mentions = append(cmd.mentions, toUser(m.ReplyTo.Sender))
	}
	return cmd, true
}

// entityText cuts an entity out of text. Offsets count UTF-16 code units.
func entityText(text string, ent tele.MessageEntity) string {
	units := utf16.Encode([]rune(text))
	end := ent.Offset + ent.Length
	if ent.Offset < 0 || end > len(units) {
		return ""
	}
	return string(utf16.Decode(units[ent.Offset:end]))
}

func prefixed(id int64) string {
	return bot.TelegramPrefix + strconv.FormatInt(id, 10)
}

func chatID(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimPrefix(id, bot.TelegramPrefix), 10, 64)
	return n, err == nil && strings.HasPrefix(id, bot.TelegramPrefix)
}

func toUser(u *tele.User) handlers.User {
	if u == nil {
		return handlers.User{}
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return handlers.User{ID: prefixed(u.ID), Name: name, Bot: u.IsBot}
}

func channelID(chat *tele.Chat) string {
	if chat == nil {
		return ""
	}
	return prefixed(chat.ID)
}

// guildID is the chat ID for groups; private chats have no guild.
func guildID(chat *tele.Chat) string {
	if chat == nil || chat.Type == tele.ChatPrivate {
		return ""
	}
	return prefixed(chat.ID)
}
