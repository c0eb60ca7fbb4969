package handlers

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/Proton-105/econ-bot/internal/economy"
)

// NewCoinflipHandler handles "coinflip <heads|tails> <bet>".
func NewCoinflipHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		res, err := svc.Coinflip(e.Context(), e.Key(), e.Arg(0), e.Arg(1))
		if err != nil {
			return err
		}
		return e.gameReply(res, e.Tf("games.coinflip.landed", map[string]any{"side": e.T("games.coinflip." + res.Side)}))
	}
}

// NewDiceHandler handles "dice <1-6> <bet>".
func NewDiceHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		guess, _ := strconv.Atoi(e.Arg(0))
		res, err := svc.Dice(e.Context(), e.Key(), guess, e.Arg(1))
		if err != nil {
			return err
		}
		return e.gameReply(res, e.Tf("games.dice.rolled", map[string]any{"roll": res.Rolled}))
	}
}

// NewRPSHandler handles "rps <rock|paper|scissors> <bet>".
func NewRPSHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		res, err := svc.RPS(e.Context(), e.Key(), e.Arg(0), e.Arg(1))
		if err != nil {
			return err
		}
		return e.gameReply(res, e.Tf("games.rps.bot", map[string]any{"choice": e.T("games.rps." + res.BotChoice)}))
	}
}

// NewSlotsHandler handles "slots <bet>".
func NewSlotsHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		res, err := svc.Slots(e.Context(), e.Key(), e.Arg(0))
		if err != nil {
			return err
		}
		reels := lo.Map(res.Reels, func(s economy.Symbol, _ int) string { return s.Emoji })
		return e.gameReply(res, "[ "+strings.Join(reels, " | ")+" ]")
	}
}

func (e *Event) gameReply(res *economy.GameResult, detail string) error {
	args := map[string]any{
		"bet":     e.Coins(res.Bet),
		"delta":   signed(res.Delta),
		"balance": e.Coins(res.Profile.Balance),
	}

	return e.Respond(Response{
		Title: e.T("games." + string(res.Game) + ".title"),
		Text:  detail + "\n" + e.Tf("games.outcome."+string(res.Outcome), args),
		Fields: []Field{
			{Name: e.T("games.delta"), Value: signed(res.Delta), Inline: true},
			{Name: e.T("balance.wallet"), Value: e.Coins(res.Profile.Balance), Inline: true},
		},
		Color: e.outcomeColor(res.Outcome),
	})
}
