package discord

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
)

func (g *Gateway) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	e := &handlers.Event{
		Platform:  handlers.PlatformDiscord,
		ID:        i.ID,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		Locale:    locale(i.Locale),
	}

	switch {
	case i.Member != nil:
		e.Sender = toUser(i.Member.User)
		e.Admin = hasAdmin(i.Member.Permissions)
	case i.User != nil:
		e.Sender = toUser(i.User)
	default:
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		e.Command = data.Name
		e.Args, e.Mentions = commandOptions(data)
	case discordgo.InteractionMessageComponent:
		e.Callback = i.MessageComponentData().CustomID
	default:
		return
	}

	e.Reply = newResponder(s, i.Interaction).reply
	g.dispatch(e)
}

// commandOptions flattens slash options in declaration order. User options
// become mentions and every other option becomes a positional argument.
func commandOptions(data discordgo.ApplicationCommandInteractionData) ([]string, []handlers.User) {
	var (
		args     []string
		mentions []handlers.User
	)

	for _, opt := range data.Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionUser:
			id := fmt.Sprint(opt.Value)
			u := &discordgo.User{ID: id}
			if data.Resolved != nil {
				if resolved, ok := data.Resolved.Users[id]; ok {
					u = resolved
				}
			}
			mentions = append(mentions, toUser(u))
		case discordgo.ApplicationCommandOptionChannel:
			args = append(args, "<#"+fmt.Sprint(opt.Value)+">")
		case discordgo.ApplicationCommandOptionInteger:
			if f, ok := opt.Value.(float64); ok {
				args = append(args, strconv.FormatInt(int64(f), 10))
			} else {
				args = append(args, fmt.Sprint(opt.Value))
			}
		default:
			args = append(args, fmt.Sprint(opt.Value))
		}
	}
	return args, mentions
}

// responder answers an interaction once and sends any further replies as
// followups, which Discord requires.
type responder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu       sync.Mutex
	answered bool
}

func newResponder(s *discordgo.Session, i *discordgo.Interaction) *responder {
	return &responder{session: s, interaction: i}
}

func (r *responder) reply(resp handlers.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := responseData(resp)
	if !r.answered {
		kind := discordgo.InteractionResponseChannelMessageWithSource
		if resp.Edit && r.interaction.Type == discordgo.InteractionMessageComponent {
			kind = discordgo.InteractionResponseUpdateMessage
		}

		if err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{Type: kind, Data: data}); err != nil {
			return err
		}
		r.answered = true
		return nil
	}

	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content:    data.Content,
		Embeds:     data.Embeds,
		Components: data.Components,
		Flags:      data.Flags,
	})
	return err
}
