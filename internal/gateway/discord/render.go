package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	"github.com/Proton-105/econ-bot/internal/bot/keyboard"
)

// Discord caps a message at five rows of five buttons.
const (
	maxRows       = 5
	maxRowButtons = 5
)

var buttonStyles = map[keyboard.Style]discordgo.ButtonStyle{
	keyboard.StylePrimary:   discordgo.PrimaryButton,
	keyboard.StyleSecondary: discordgo.SecondaryButton,
	keyboard.StyleSuccess:   discordgo.SuccessButton,
	keyboard.StyleDanger:    discordgo.DangerButton,
}

// components converts markup into action rows. A nil result leaves the
// message components untouched; an empty non-nil slice clears them.
func components(m keyboard.Markup, clear bool) []discordgo.MessageComponent {
	if m.Empty() {
		if clear {
			return []discordgo.MessageComponent{}
		}
		return nil
	}

	rows := make([]discordgo.MessageComponent, 0, len(m))
	for _, row := range m {
		if len(row) == 0 {
			continue
		}
		if len(rows) == maxRows {
			break
		}

		buttons := make([]discordgo.MessageComponent, 0, len(row))
		for _, b := range row {
			if len(buttons) == maxRowButtons {
				break
			}
			style, ok := buttonStyles[b.Style]
			if !ok {
				style = discordgo.PrimaryButton
			}
			buttons = append(buttons, discordgo.Button{
				Label:    b.Text,
				Style:    style,
				CustomID: b.Data,
				Disabled: b.Disabled,
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

// embeds renders Title and Fields as one embed. Plain text replies have none.
func embeds(r handlers.Response) []*discordgo.MessageEmbed {
	if r.Title == "" && len(r.Fields) == 0 {
		return nil
	}

	embed := &discordgo.MessageEmbed{
		Title:       r.Title,
		Description: r.Text,
		Color:       r.Color,
	}
	for _, f := range r.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  nonEmpty(f.Value),
			Inline: f.Inline,
		})
	}
	return []*discordgo.MessageEmbed{embed}
}

// content is the plain text part; it is empty when the text went into an embed.
func content(r handlers.Response) string {
	if r.Title != "" || len(r.Fields) > 0 {
		return ""
	}
	return r.Text
}

func responseData(r handlers.Response) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Content:    content(r),
		Embeds:     embeds(r),
		Components: components(r.Buttons, r.Edit),
	}
	if r.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

// locale reduces a Discord locale such as "en-US" to its language.
func locale(l discordgo.Locale) string {
	lang, _, _ := strings.Cut(strings.ToLower(string(l)), "-")
	return lang
}

func nonEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "​"
	}
	return s
}
