package handlers

import (
	"github.com/Proton-105/econ-bot/internal/bot/keyboard"
)

// NewHelpHandler shows the topic menu, or a topic when a button is pressed or
// a topic is named.
func NewHelpHandler() Handler {
	return func(e *Event) error {
		topic := e.Arg(0)
		if e.IsCallback() {
			if _, data, err := keyboard.DecodeCallback(e.Callback); err == nil {
				topic = data
			}
		}

		resp := Response{
			Title:   e.T("help.title"),
			Text:    e.T("help.intro"),
			Color:   ColorInfo,
			Buttons: keyboard.HelpMenu(e.Translator),
			Edit:    e.IsCallback(),
		}
		if topic != "" {
			resp.Title = e.T("help.topics." + topic)
			resp.Text = e.T("help.body." + topic)
		}
		return e.Respond(resp)
	}
}
