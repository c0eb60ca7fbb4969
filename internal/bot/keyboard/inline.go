package keyboard

// Style hints how a gateway should colour a button. Telegram ignores it.
type Style int

const (
	StylePrimary Style = iota
	StyleSecondary
	StyleSuccess
	StyleDanger
)

// Button is a rendered, transport-neutral button. Data is the encoded callback.
type Button struct {
	Text     string
	Data     string
	Style    Style
	Disabled bool
}

// Markup is a grid of buttons; gateways convert it into their native components.
type Markup [][]Button

// Empty reports whether the markup has no buttons.
func (m Markup) Empty() bool {
	for _, row := range m {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

// InlineButton is a button definition before its callback data is encoded.
type InlineButton struct {
	Text   string
	Action string // Identifier that differentiates callback handlers.
	Data   string // Payload that will be encoded into callback data.
	Style  Style
}

// InlineKeyboardBuilder accumulates rows of InlineButton definitions.
type InlineKeyboardBuilder struct {
	rows [][]InlineButton
}

func NewInlineKeyboard() *InlineKeyboardBuilder {
	return &InlineKeyboardBuilder{rows: make([][]InlineButton, 0)}
}

// AddRow appends a new row made of custom InlineButton definitions.
func (b *InlineKeyboardBuilder) AddRow(buttons ...InlineButton) *InlineKeyboardBuilder {
	if len(buttons) == 0 {
		return b
	}

	row := make([]InlineButton, len(buttons))
	copy(row, buttons)
	b.rows = append(b.rows, row)
	return b
}

// Build encodes every button and fails on the first one over the size limit.
func (b *InlineKeyboardBuilder) Build() (Markup, error) {
	markup := make(Markup, len(b.rows))
	for i, row := range b.rows {
		markup[i] = make([]Button, len(row))
		for j, btn := range row {
			data, err := EncodeCallback(btn.Action, btn.Data)
			if err != nil {
				return nil, err
			}
			markup[i][j] = Button{Text: btn.Text, Data: data, Style: btn.Style}
		}
	}

	return markup, nil
}

// Disable returns a copy of m with every button disabled, used once a
// session has been settled.
func Disable(m Markup) Markup {
	out := make(Markup, len(m))
	for i, row := range m {
		out[i] = make([]Button, len(row))
		for j, btn := range row {
			btn.Disabled = true
			out[i][j] = btn
		}
	}
	return out
}
