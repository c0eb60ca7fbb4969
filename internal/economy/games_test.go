package economy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

func TestCoinflip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 1000)

	f.setRolls(0.2)
	res, err := f.svc.Coinflip(ctx, alice, "h", "100")
	require.NoError(t, err)
	assert.Equal(t, OutcomeWin, res.Outcome)
	assert.Equal(t, "heads", res.Side)
	assert.Equal(t, int64(1100), res.Profile.Balance)

	f.clock.Advance(GameCooldown)
	f.setRolls(0.7)
	res, err = f.svc.Coinflip(ctx, alice, "heads", "all")
	require.NoError(t, err)
	assert.Equal(t, OutcomeLose, res.Outcome)
	assert.Zero(t, res.Profile.Balance)
	assert.Equal(t, int64(2), res.Profile.Stats.GamesPlayed)
	assert.Equal(t, int64(1), res.Profile.Stats.GamesWon)
	assert.Equal(t, int64(1100), res.Profile.Stats.TotalLost)

	_, err = f.svc.Coinflip(ctx, alice, "edge", "100")
	requireAppError(t, err, apperrors.KindValidation, "invalid_side")
}

func TestDice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 1000)
	f.setRolls(0.4)

	res, err := f.svc.Dice(ctx, alice, 3, "100")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rolled)
	assert.Equal(t, int64(600), res.Delta)
	assert.Equal(t, int64(1600), res.Profile.Balance)

	_, err = f.svc.Dice(ctx, alice, 7, "100")
	requireAppError(t, err, apperrors.KindValidation, "invalid_guess")

	_, err = f.svc.Dice(ctx, alice, 3, "100")
	requireAppError(t, err, apperrors.KindPrecondition, "cooldown")

	f.clock.Advance(GameCooldown)
	f.setRolls(0.999)
	res, err = f.svc.Dice(ctx, alice, 3, "100")
	require.NoError(t, err)
	assert.Equal(t, 6, res.Rolled)
	assert.Equal(t, int64(1500), res.Profile.Balance)
}

func TestRPS_TieReturnsStake(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 100)
	f.setRolls(0)

	res, err := f.svc.RPS(ctx, alice, "Rock", "50")
	require.NoError(t, err)
	assert.Equal(t, OutcomeTie, res.Outcome)
	assert.Equal(t, "rock", res.BotChoice)
	assert.Equal(t, int64(100), res.Profile.Balance)
	assert.Equal(t, int64(1), res.Profile.Stats.GamesPlayed)
}

func TestRPS_Outcomes(t *testing.T) {
	testCases := []struct {
		choice string
		roll   float64
		want   Outcome
	}{
		{choice: "paper", roll: 0, want: OutcomeWin},
		{choice: "scissors", roll: 0, want: OutcomeLose},
		{choice: "scissors", roll: 0.5, want: OutcomeWin},
		{choice: "rock", roll: 0.9, want: OutcomeWin},
	}

	for _, tc := range testCases {
		t.Run(tc.choice, func(t *testing.T) {
			f := newFixture(t)
			f.wallet(t, alice, 100)
			f.setRolls(tc.roll)

			res, err := f.svc.RPS(context.Background(), alice, tc.choice, "10")
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Outcome)
		})
	}
}

func TestGames_StakeValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 1000)

	_, err := f.svc.Slots(ctx, alice, "5")
	requireAppError(t, err, apperrors.KindValidation, "bet_too_small")

	_, err = f.svc.Slots(ctx, alice, "1001")
	requireAppError(t, err, apperrors.KindPrecondition, "insufficient_funds")

	f.wallet(t, bob, 5)
	_, err = f.svc.Slots(ctx, bob, "all")
	requireAppError(t, err, apperrors.KindValidation, "bet_too_small")

	p := f.profile(t, alice)
	assert.Zero(t, p.Stats.GamesPlayed)
	assert.Zero(t, p.LastAction(domain.ActionSlots))
}

func TestGames_CooldownsAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 1000)

	_, err := f.svc.Dice(ctx, alice, 1, "10")
	require.NoError(t, err)
	_, err = f.svc.Slots(ctx, alice, "10")
	require.NoError(t, err)

	f.clock.Advance(9 * time.Second)
	_, err = f.svc.Slots(ctx, alice, "10")
	requireAppError(t, err, apperrors.KindPrecondition, "cooldown")
}

func TestSlotPayout(t *testing.T) {
	cherry, lemon, seven := SlotSymbols[0], SlotSymbols[1], SlotSymbols[7]

	testCases := []struct {
		name      string
		reels     []Symbol
		want      Outcome
		wantDelta int64
	}{
		{name: "three sevens", reels: []Symbol{seven, seven, seven}, want: OutcomeWin, wantDelta: 5000},
		{name: "left pair", reels: []Symbol{lemon, lemon, cherry}, want: OutcomeWin, wantDelta: 150},
		{name: "right pair", reels: []Symbol{cherry, seven, seven}, want: OutcomeWin, wantDelta: 2500},
		{name: "split pair pays nothing", reels: []Symbol{cherry, lemon, cherry}, want: OutcomeLose, wantDelta: -100},
		{name: "no match", reels: []Symbol{cherry, lemon, seven}, want: OutcomeLose, wantDelta: -100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, delta := slotPayout(tc.reels, 100)
			assert.Equal(t, tc.want, outcome)
			assert.Equal(t, tc.wantDelta, delta)
		})
	}
}

func TestSlots_WeightedReels(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 1000)
	f.setRolls(0, 0, 0.25)

	res, err := f.svc.Slots(ctx, alice, "100")
	require.NoError(t, err)
	require.Len(t, res.Reels, 3)
	assert.Equal(t, SlotSymbols[0], res.Reels[0])
	assert.Equal(t, SlotSymbols[1], res.Reels[2])
	assert.Equal(t, int64(100), res.Delta)
	assert.Equal(t, int64(1100), res.Profile.Balance)
}
