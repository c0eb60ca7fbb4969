package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/economy"
)

// FormatCoins renders an amount with the digit grouping of locale.
func FormatCoins(locale string, n int64) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprintf("%d", n) + " 🪙"
}

// Coins renders an amount in the event locale.
func (e *Event) Coins(n int64) string {
	return FormatCoins(e.Locale, n)
}

// Mention renders a user reference the gateway understands.
func (e *Event) Mention(userID string) string {
	switch e.Platform {
	case PlatformDiscord:
		return "<@" + userID + ">"
	default:
		for _, m := range append([]User{e.Sender}, e.Mentions...) {
			if m.ID == userID && m.Name != "" {
				return m.Name
			}
		}
		return strings.TrimPrefix(userID, "tg:")
	}
}

func (e *Event) when(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 MST")
}

func (e *Event) success(title, text string) error {
	return e.Respond(Response{Title: title, Text: text, Color: ColorSuccess})
}

func (e *Event) info(title, text string, fields ...Field) error {
	return e.Respond(Response{Title: title, Text: text, Fields: fields, Color: ColorInfo})
}

func (e *Event) balanceFields(p *domain.Profile) []Field {
	return []Field{
		{Name: e.T("balance.wallet"), Value: e.Coins(p.Balance), Inline: true},
		{Name: e.T("balance.bank"), Value: e.Coins(p.Bank), Inline: true},
	}
}

func (e *Event) cards(hand []economy.Card) string {
	return strings.Join(lo.Map(hand, func(c economy.Card, _ int) string { return c.String() }), " ")
}

func (e *Event) outcomeColor(o economy.Outcome) int {
	switch o {
	case economy.OutcomeWin:
		return ColorSuccess
	case economy.OutcomeTie:
		return ColorWarning
	default:
		return ColorDanger
	}
}

func signed(n int64) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}
