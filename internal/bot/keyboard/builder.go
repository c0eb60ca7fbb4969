package keyboard

import (
	"log/slog"

	"github.com/Proton-105/econ-bot/internal/i18n"
)

// Callback actions. Session buttons carry the session ID as payload.
const (
	ActionBlackjackHit   = "bj:hit"
	ActionBlackjackStand = "bj:stand"
	ActionMarryAccept    = "marry:yes"
	ActionMarryReject    = "marry:no"
	ActionKhulaAccept    = "khula:yes"
	ActionKhulaReject    = "khula:no"
	ActionLeaderboard    = "lb:page"
	ActionHelp           = "help:topic"
)

// Builder creates the interactive keyboards attached to session messages.
type Builder struct {
	log *slog.Logger
}

func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{log: log}
}

// Blackjack builds hit and stand buttons for an open round.
func (b *Builder) Blackjack(t i18n.Translator, sessionID string) Markup {
	return b.build(sessionID,
		InlineButton{Text: label(t, "buttons.hit", "Hit", nil), Action: ActionBlackjackHit, Style: StylePrimary},
		InlineButton{Text: label(t, "buttons.stand", "Stand", nil), Action: ActionBlackjackStand, Style: StyleSecondary},
	)
}

// Proposal builds accept and reject buttons for a marriage proposal.
func (b *Builder) Proposal(t i18n.Translator, sessionID string) Markup {
	return b.build(sessionID,
		InlineButton{Text: label(t, "buttons.accept", "Accept", nil), Action: ActionMarryAccept, Style: StyleSuccess},
		InlineButton{Text: label(t, "buttons.reject", "Reject", nil), Action: ActionMarryReject, Style: StyleDanger},
	)
}

// Khula builds accept and reject buttons for a khula request.
func (b *Builder) Khula(t i18n.Translator, sessionID string) Markup {
	return b.build(sessionID,
		InlineButton{Text: label(t, "buttons.accept", "Accept", nil), Action: ActionKhulaAccept, Style: StyleSuccess},
		InlineButton{Text: label(t, "buttons.reject", "Reject", nil), Action: ActionKhulaReject, Style: StyleDanger},
	)
}

func (b *Builder) build(sessionID string, buttons ...InlineButton) Markup {
	for i := range buttons {
		buttons[i].Data = sessionID
	}

	markup, err := NewInlineKeyboard().AddRow(buttons...).Build()
	if err != nil {
		b.log.Error("keyboard build failed", slog.String("session_id", sessionID), slog.Any("error", err))
		return nil
	}
	return markup
}
