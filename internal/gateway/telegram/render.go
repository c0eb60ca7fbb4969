package telegram

import (
	"html"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	"github.com/Proton-105/econ-bot/internal/bot/keyboard"
)

// text renders a response as HTML: a bold title, the body, then one line
// per field.
func text(r handlers.Response) string {
	var b strings.Builder
	if r.Title != "" {
		b.WriteString("<b>")
		b.WriteString(html.EscapeString(r.Title))
		b.WriteString("</b>")
	}
	if r.Text != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(html.EscapeString(r.Text))
	}
	for _, f := range r.Fields {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("<b>")
		b.WriteString(html.EscapeString(f.Name))
		b.WriteString(":</b> ")
		b.WriteString(html.EscapeString(f.Value))
	}
	return b.String()
}

// markup converts buttons to an inline keyboard. Telegram has no disabled
// buttons, so they are dropped; a keyboard left empty removes the buttons.
func markup(m keyboard.Markup) *tele.ReplyMarkup {
	rm := &tele.ReplyMarkup{}
	for _, row := range m {
		var buttons []tele.InlineButton
		for _, b := range row {
			if b.Disabled {
				continue
			}
			buttons = append(buttons, tele.InlineButton{Text: b.Text, Data: b.Data})
		}
		if len(buttons) > 0 {
			rm.InlineKeyboard = append(rm.InlineKeyboard, buttons)
		}
	}
	return rm
}

// sendOptions attaches the keyboard. An edit always carries one so that
// finished games lose their buttons.
func sendOptions(r handlers.Response) *tele.SendOptions {
	opts := &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
	}
	if rm := markup(r.Buttons); len(rm.InlineKeyboard) > 0 || r.Edit {
		opts.ReplyMarkup = rm
	}
	return opts
}
