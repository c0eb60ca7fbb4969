package keyboard

import (
	"strconv"

	"github.com/Proton-105/econ-bot/internal/i18n"
)

// Page is one window over a ranked list such as the leaderboard. Number is
// 1-based; [Start, End) indexes the underlying slice.
type Page struct {
	Number int
	Count  int
	Start  int
	End    int
}

// Paginate clamps number into the valid range for total items.
func Paginate(total, perPage, number int) Page {
	if perPage <= 0 {
		perPage = total
	}
	count := 1
	if total > 0 && perPage > 0 {
		count = (total + perPage - 1) / perPage
	}
	number = max(1, min(number, count))

	start := min((number-1)*perPage, total)
	return Page{
		Number: number,
		Count:  count,
		Start:  start,
		End:    min(start+perPage, total),
	}
}

// Buttons renders prev / indicator / next under action; each button's data
// is the page it opens. A single page has no buttons.
func (p Page) Buttons(t i18n.Translator, action string) []InlineButton {
	if p.Count <= 1 {
		return nil
	}

	open := func(text string, n int) InlineButton {
		return InlineButton{Text: text, Action: action, Data: strconv.Itoa(n), Style: StyleSecondary}
	}

	buttons := make([]InlineButton, 0, 3)
	if p.Number > 1 {
		buttons = append(buttons, open(label(t, "pagination.prev", "◀️", nil), p.Number-1))
	}
	buttons = append(buttons, open(label(t, "pagination.page", "{{.Page}}/{{.Total}}", map[string]any{
		"Page":  p.Number,
		"Total": p.Count,
	}), p.Number))
	if p.Number < p.Count {
		buttons = append(buttons, open(label(t, "pagination.next", "▶️", nil), p.Number+1))
	}
	return buttons
}

func label(t i18n.Translator, key, fallback string, args map[string]any) string {
	text := fallback
	if t != nil {
		if v := t.T(key); v != "" && v != key {
			text = v
		}
	}
	return i18n.Format(text, args)
}
