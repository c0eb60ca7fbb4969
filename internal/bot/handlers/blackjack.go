package handlers

import (
	"context"
	"strconv"

	"github.com/Proton-105/econ-bot/internal/bot/keyboard"
	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/economy"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

// NewBlackjackHandler deals a round and attaches hit/stand buttons while it is open.
func NewBlackjackHandler(svc *economy.Service, kb *keyboard.Builder) Handler {
	return func(e *Event) error {
		state, err := svc.StartBlackjack(e.Context(), e.Scope(), e.Key(), e.Arg(0))
		if err != nil {
			return err
		}
		return e.Respond(e.blackjackView(state, kb))
	}
}

// NewBlackjackHitHandler draws a card for the round named in the button data.
func NewBlackjackHitHandler(svc *economy.Service, kb *keyboard.Builder) Handler {
	return blackjackAction(svc.Hit, kb)
}

// NewBlackjackStandHandler lets the dealer play out and settles the round.
func NewBlackjackStandHandler(svc *economy.Service, kb *keyboard.Builder) Handler {
	return blackjackAction(svc.Stand, kb)
}

type blackjackMove func(ctx context.Context, scope economy.Scope, key domain.Key, sessionID string) (*economy.BlackjackState, error)

func blackjackAction(move blackjackMove, kb *keyboard.Builder) Handler {
	return func(e *Event) error {
		sessionID, err := sessionFromCallback(e)
		if err != nil {
			return err
		}

		state, err := move(e.Context(), e.Scope(), e.Key(), sessionID)
		if err != nil {
			return err
		}

		view := e.blackjackView(state, kb)
		view.Edit = true
		return e.Respond(view)
	}
}

func (e *Event) blackjackView(s *economy.BlackjackState, kb *keyboard.Builder) Response {
	dealerCards := e.cards(s.Dealer)
	dealerValue := strconv.Itoa(s.DealerValue)
	if !s.Finished && len(s.Dealer) > 0 {
		dealerCards = e.cards(s.Dealer[:1]) + " 🂠"
		dealerValue = "?"
	}

	resp := Response{
		Title: e.T("games.blackjack.title"),
		Fields: []Field{
			{Name: e.Tf("games.blackjack.you", map[string]any{"value": s.PlayerValue}), Value: e.cards(s.Player), Inline: true},
			{Name: e.Tf("games.blackjack.dealer", map[string]any{"value": dealerValue}), Value: dealerCards, Inline: true},
		},
		Color: ColorInfo,
	}

	if !s.Finished {
		resp.Text = e.Tf("games.blackjack.open", map[string]any{
			"bet":     e.Coins(s.Bet),
			"expires": e.when(s.ExpiresAt),
		})
		resp.Buttons = kb.Blackjack(e.Translator, s.SessionID)
		return resp
	}

	resp.Color = e.outcomeColor(s.Outcome)
	resp.Text = e.Tf("games.outcome."+string(s.Outcome), map[string]any{
		"bet":     e.Coins(s.Bet),
		"delta":   signed(s.Payout - s.Bet),
		"balance": e.Coins(s.Profile.Balance),
	})
	return resp
}

// sessionFromCallback extracts the session ID payload of a session button.
func sessionFromCallback(e *Event) (string, error) {
	_, data, err := keyboard.DecodeCallback(e.Callback)
	if err != nil || data == "" {
		return "", apperrors.NewNotFoundError("session_expired", "This interaction has expired.", nil)
	}
	return data, nil
}
