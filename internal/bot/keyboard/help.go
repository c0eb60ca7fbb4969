package keyboard

import "github.com/Proton-105/econ-bot/internal/i18n"

// HelpTopics are the command groups shown by the help menu, in display order.
var HelpTopics = []string{"bank", "work", "risk", "games", "family", "shop", "admin"}

// HelpMenu builds one button per help topic, two per row.
func HelpMenu(t i18n.Translator) Markup {
	builder := NewInlineKeyboard()
	for i := 0; i < len(HelpTopics); i += 2 {
		row := make([]InlineButton, 0, 2)
		for _, topic := range HelpTopics[i:min(i+2, len(HelpTopics))] {
			row = append(row, InlineButton{
				Text:   label(t, "help.topics."+topic, topic, nil),
				Action: ActionHelp,
				Data:   topic,
				Style:  StyleSecondary,
			})
		}
		builder.AddRow(row...)
	}

	markup, err := builder.Build()
	if err != nil {
		return nil
	}
	return markup
}
