package keyboard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/econ-bot/internal/bot/keyboard"
)

func TestInlineKeyboardBuilder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		markup, err := keyboard.NewInlineKeyboard().AddRow(
			keyboard.InlineButton{Text: "Prev", Action: "lb:page", Data: "1"},
			keyboard.InlineButton{Text: "Next", Action: "lb:page", Data: "2"},
		).AddRow(
			keyboard.InlineButton{Text: "Help", Action: "help:topic", Data: "bank"},
		).Build()
		require.NoError(t, err)

		require.Len(t, markup, 2)
		assert.Len(t, markup[0], 2)
		assert.Len(t, markup[1], 1)
		assert.Equal(t, "lb:page:2", markup[0][1].Data)
		assert.False(t, markup.Empty())
	})

	t.Run("callback data overflow", func(t *testing.T) {
		_, err := keyboard.NewInlineKeyboard().AddRow(keyboard.InlineButton{
			Text:   "Too big",
			Action: "overflow",
			Data:   strings.Repeat("x", keyboard.CallbackDataLimitBytes),
		}).Build()
		assert.Error(t, err)
	})
}

func TestBuilder_SessionButtons(t *testing.T) {
	b := keyboard.NewBuilder(nil)
	tr := mockTranslator{"buttons.hit": "Ещё"}

	bj := b.Blackjack(tr, "s1")
	require.Len(t, bj, 1)
	require.Len(t, bj[0], 2)
	assert.Equal(t, "Ещё", bj[0][0].Text)
	assert.Equal(t, "bj:hit:s1", bj[0][0].Data)
	assert.Equal(t, "Stand", bj[0][1].Text)
	assert.Equal(t, "bj:stand:s1", bj[0][1].Data)

	proposal := b.Proposal(nil, "s2")
	assert.Equal(t, "marry:yes:s2", proposal[0][0].Data)
	assert.Equal(t, "marry:no:s2", proposal[0][1].Data)

	khula := b.Khula(nil, "s3")
	assert.Equal(t, "khula:yes:s3", khula[0][0].Data)
	assert.Equal(t, keyboard.StyleDanger, khula[0][1].Style)

	disabled := keyboard.Disable(khula)
	assert.True(t, disabled[0][0].Disabled)
	assert.False(t, khula[0][0].Disabled)
}

func TestHelpMenu(t *testing.T) {
	markup := keyboard.HelpMenu(nil)

	var topics []string
	for _, row := range markup {
		assert.LessOrEqual(t, len(row), 2)
		for _, btn := range row {
			_, topic, err := keyboard.DecodeCallback(btn.Data)
			require.NoError(t, err)
			topics = append(topics, topic)
		}
	}
	assert.Equal(t, keyboard.HelpTopics, topics)
}
