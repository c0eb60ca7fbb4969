package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
)

type parsedMessage struct {
	name     string
	args     []string
	mentions []handlers.User
}

// parseMessage splits a prefixed command. User mentions are pulled out of
// the arguments in the order they were typed; channel mentions stay as
// arguments.
func parseMessage(prefix, text string, mentioned []*discordgo.User) (parsedMessage, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, prefix) {
		return parsedMessage{}, false
	}

	fields := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(fields) == 0 {
		return parsedMessage{}, false
	}

	users := make(map[string]*discordgo.User, len(mentioned))
	for _, u := range mentioned {
		if u != nil {
			users[u.ID] = u
		}
	}

	msg := parsedMessage{name: strings.ToLower(fields[0])}
	for _, f := range fields[1:] {
		if id, ok := userMention(f); ok {
			u, known := users[id]
			if !known {
				u = &discordgo.User{ID: id}
			}
			msg.mentions = append(msg.mentions, toUser(u))
			continue
		}
		msg.args = append(msg.args, f)
	}
	return msg, true
}

// userMention extracts the ID from <@id> or <@!id>.
func userMention(token string) (string, bool) {
	if !strings.HasPrefix(token, "<@") || !strings.HasSuffix(token, ">") {
		return "", false
	}
	id := strings.TrimPrefix(strings.TrimSuffix(token[2:], ">"), "!")
	if id == "" || strings.HasPrefix(id, "&") {
		return "", false
	}
	return id, true
}

func (g *Gateway) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	msg, ok := parseMessage(g.prefix, m.Content, m.Mentions)
	if !ok {
		return
	}
	if _, known := g.bot.Resolve(msg.name); !known {
		return
	}

	ref := m.Reference()
	e := &handlers.Event{
		Platform:  handlers.PlatformDiscord,
		ID:        m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Sender:    toUser(m.Author),
		Admin:     m.GuildID != "" && g.isAdmin(m.Author.ID, m.ChannelID),
		Command:   msg.name,
		Args:      msg.args,
		Mentions:  msg.mentions,
		Reply: func(r handlers.Response) error {
			_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
				Content:         content(r),
				Embeds:          embeds(r),
				Components:      components(r.Buttons, false),
				Reference:       ref,
				AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers}},
			})
			return err
		},
	}

	g.dispatch(e)
}
