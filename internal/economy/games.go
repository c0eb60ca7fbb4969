package economy

import (
	"context"
	"strings"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/pkg/metrics"
)

// MinBet applies to every game.
const MinBet int64 = 10

// Outcome is the result of a settled round.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomeTie  Outcome = "tie"
)

// GameResult reports a settled instant game. Delta is the net wallet change.
type GameResult struct {
	Game    domain.Action
	Outcome Outcome
	Bet     int64
	Delta   int64
	Profile *domain.Profile

	Side      string   // coinflip: the side that landed
	Rolled    int      // dice
	BotChoice string   // rps
	Reels     []Symbol // slots
}

// round resolves one game after the stake has been validated.
type round func(bet int64, res *GameResult) (Outcome, int64)

func (s *Service) play(ctx context.Context, key domain.Key, game domain.Action, raw string, resolve round) (*GameResult, error) {
	amt, err := ParseAmount(raw)
	if err != nil {
		return nil, err
	}
	if !amt.All && amt.Value < MinBet {
		return nil, betTooSmall()
	}

	res := &GameResult{Game: game}
	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		now := s.now()
		if err := s.gate(p, nil, game, now); err != nil {
			return err
		}

		bet := amt.Resolve(p.Balance)
		if amt.All && bet < MinBet {
			return betTooSmall()
		}
		if bet > p.Balance {
			return insufficientFunds(p.Balance, bet)
		}

		outcome, delta := resolve(bet, res)
		p.Balance += delta
		p.Stats.GamesPlayed++
		switch outcome {
		case OutcomeWin:
			p.Stats.GamesWon++
			p.Stats.TotalEarned += delta
		case OutcomeLose:
			p.Stats.TotalLost += -delta
		}
		p.Stamp(game, now)

		res.Outcome, res.Bet, res.Delta = outcome, bet, delta
		return nil
	})
	if err != nil {
		return nil, s.storeErr(string(game), err)
	}

	res.Profile = p
	metrics.RecordGame(string(game), string(res.Outcome))
	return res, nil
}

func betTooSmall() error {
	return apperrors.NewValidationError("bet_too_small", "The minimum bet is 10 coins.",
		map[string]any{"min": MinBet})
}

// Coinflip pays even money on a correct call.
func (s *Service) Coinflip(ctx context.Context, key domain.Key, side, raw string) (*GameResult, error) {
	call, ok := parseSide(side)
	if !ok {
		return nil, apperrors.NewValidationError("invalid_side", "Pick heads or tails.", nil)
	}

	return s.play(ctx, key, domain.ActionCoinflip, raw, func(bet int64, res *GameResult) (Outcome, int64) {
		landed := "tails"
		if s.rnd.Float64() < 0.5 {
			landed = "heads"
		}
		res.Side = landed
		if landed == call {
			return OutcomeWin, bet
		}
		return OutcomeLose, -bet
	})
}

func parseSide(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "heads", "head", "h":
		return "heads", true
	case "tails", "tail", "t":
		return "tails", true
	}
	return "", false
}

// Dice pays six times the bet when the guess matches the roll.
func (s *Service) Dice(ctx context.Context, key domain.Key, guess int, raw string) (*GameResult, error) {
	if guess < 1 || guess > 6 {
		return nil, apperrors.NewValidationError("invalid_guess", "Guess a number from 1 to 6.", nil)
	}

	return s.play(ctx, key, domain.ActionDice, raw, func(bet int64, res *GameResult) (Outcome, int64) {
		rolled := min(int(s.rnd.Float64()*6)+1, 6)
		res.Rolled = rolled
		if rolled == guess {
			return OutcomeWin, bet * 6
		}
		return OutcomeLose, -bet
	})
}

var rpsChoices = []string{"rock", "paper", "scissors"}

var rpsBeats = map[string]string{"rock": "scissors", "paper": "rock", "scissors": "paper"}

// RPS plays rock-paper-scissors against the bot; ties return the stake.
func (s *Service) RPS(ctx context.Context, key domain.Key, choice, raw string) (*GameResult, error) {
	choice = strings.ToLower(strings.TrimSpace(choice))
	if _, ok := rpsBeats[choice]; !ok {
		return nil, apperrors.NewValidationError("invalid_choice", "Pick rock, paper or scissors.", nil)
	}

	return s.play(ctx, key, domain.ActionRPS, raw, func(bet int64, res *GameResult) (Outcome, int64) {
		bot := rpsChoices[min(int(s.rnd.Float64()*3), 2)]
		res.BotChoice = bot
		switch {
		case bot == choice:
			return OutcomeTie, 0
		case rpsBeats[choice] == bot:
			return OutcomeWin, bet
		default:
			return OutcomeLose, -bet
		}
	})
}

// Symbol is one slot reel face.
type Symbol struct {
	Emoji      string
	Multiplier int64
}

// SlotSymbols are ordered from most to least frequent; the weight of the
// symbol at index i is len(SlotSymbols)-i.
var SlotSymbols = []Symbol{
	{Emoji: "🍒", Multiplier: 2},
	{Emoji: "🍋", Multiplier: 3},
	{Emoji: "🍊", Multiplier: 4},
	{Emoji: "🍇", Multiplier: 5},
	{Emoji: "🔔", Multiplier: 8},
	{Emoji: "⭐", Multiplier: 10},
	{Emoji: "💎", Multiplier: 20},
	{Emoji: "7️⃣", Multiplier: 50},
}

func slotWeightTotal() int {
	n := len(SlotSymbols)
	return n * (n + 1) / 2
}

func (s *Service) spinReel() Symbol {
	x := s.rnd.Float64() * float64(slotWeightTotal())
	acc := 0.0
	for i, sym := range SlotSymbols {
		acc += float64(len(SlotSymbols) - i)
		if x < acc {
			return sym
		}
	}
	return SlotSymbols[len(SlotSymbols)-1]
}

// Slots spins three reels. Three of a kind pays bet times the multiplier;
// two adjacent matching reels pay half that.
func (s *Service) Slots(ctx context.Context, key domain.Key, raw string) (*GameResult, error) {
	return s.play(ctx, key, domain.ActionSlots, raw, func(bet int64, res *GameResult) (Outcome, int64) {
		reels := []Symbol{s.spinReel(), s.spinReel(), s.spinReel()}
		res.Reels = reels
		return slotPayout(reels, bet)
	})
}

func slotPayout(reels []Symbol, bet int64) (Outcome, int64) {
	switch {
	case reels[0] == reels[1] && reels[1] == reels[2]:
		return OutcomeWin, bet * reels[0].Multiplier
	case reels[0] == reels[1]:
		return OutcomeWin, bet * reels[0].Multiplier / 2
	case reels[1] == reels[2]:
		return OutcomeWin, bet * reels[1].Multiplier / 2
	default:
		return OutcomeLose, -bet
	}
}
