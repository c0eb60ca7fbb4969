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

func TestCrime(t *testing.T) {
	testCases := []struct {
		name        string
		balance     int64
		rolls       []float64
		wantSuccess bool
		wantAmount  int64
		wantBalance int64
	}{
		{name: "success scales with wallet", balance: 4000, rolls: []float64{0.9, 0.5}, wantSuccess: true, wantAmount: 1500, wantBalance: 5500},
		{name: "failure fines seventy percent", balance: 4000, rolls: []float64{0.2, 0.5}, wantAmount: 1050, wantBalance: 2950},
		{name: "exact half fails", balance: 4000, rolls: []float64{0.5, 0}, wantAmount: 700, wantBalance: 3300},
		{name: "small wallet earns the minimum", balance: 1000, rolls: []float64{0.9, 0.5}, wantSuccess: true, wantAmount: 1000, wantBalance: 2000},
		{name: "reward capped", balance: 1_000_000, rolls: []float64{0.9, 0.5}, wantSuccess: true, wantAmount: 5500, wantBalance: 1_005_500},
		{name: "fine never exceeds wallet", balance: 0, rolls: []float64{0.1, 0.5}, wantAmount: 0, wantBalance: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.wallet(t, alice, tc.balance)
			f.setRolls(tc.rolls...)

			res, err := f.svc.Crime(context.Background(), alice)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSuccess, res.Success)
			assert.Equal(t, tc.wantAmount, res.Amount)
			assert.Equal(t, tc.wantBalance, res.Profile.Balance)
			assert.Equal(t, int64(1), res.Profile.Stats.CrimesCommitted)
			assert.GreaterOrEqual(t, res.Profile.Balance, int64(0))
		})
	}
}

func TestCrime_Cooldown(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 4000)
	f.setRolls(0.9, 0.5)

	_, err := f.svc.Crime(ctx, alice)
	require.NoError(t, err)

	f.clock.Advance(29 * time.Minute)
	_, err = f.svc.Crime(ctx, alice)
	requireAppError(t, err, apperrors.KindPrecondition, "cooldown")
	assert.Equal(t, int64(5500), f.profile(t, alice).Balance, "rejected attempts leave no trace")

	f.clock.Advance(time.Minute)
	_, err = f.svc.Crime(ctx, alice)
	assert.NoError(t, err)
}

func TestCrime_GuildCooldownOverride(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.guilds.Save(ctx, &domain.GuildConfig{
		GuildID:   guildID,
		Cooldowns: map[domain.Action]int64{domain.ActionCrime: 60_000},
	}))
	f.wallet(t, alice, 100)

	_, err := f.svc.Crime(ctx, alice)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	_, err = f.svc.Crime(ctx, alice)
	assert.NoError(t, err)
}

func TestRob(t *testing.T) {
	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		victim      func(p *domain.Profile)
		rolls       []float64
		wantOutcome RobOutcome
		wantAmount  int64
		wantActor   int64
		wantVictim  int64
	}{
		{
			name:        "success takes a capped share",
			victim:      func(p *domain.Profile) { p.Balance = 1000 },
			rolls:       []float64{0.8, 0.8},
			wantOutcome: RobSucceeded, wantAmount: 240, wantActor: 1240, wantVictim: 760,
		},
		{
			name:        "success never exceeds five hundred",
			victim:      func(p *domain.Profile) { p.Balance = 10000 },
			rolls:       []float64{0.8, 0.8},
			wantOutcome: RobSucceeded, wantAmount: 400, wantActor: 1400, wantVictim: 9600,
		},
		{
			name:        "steal is drawn independently of the success roll",
			victim:      func(p *domain.Profile) { p.Balance = 10000 },
			rolls:       []float64{0.61, 0.01},
			wantOutcome: RobSucceeded, wantAmount: 5, wantActor: 1005, wantVictim: 9995,
		},
		{
			name:        "steal scales with the second draw",
			victim:      func(p *domain.Profile) { p.Balance = 10000 },
			rolls:       []float64{0.99, 0.5},
			wantOutcome: RobSucceeded, wantAmount: 250, wantActor: 1250, wantVictim: 9750,
		},
		{
			name:        "failure fines fifteen percent",
			victim:      func(p *domain.Profile) { p.Balance = 1000 },
			rolls:       []float64{0.6},
			wantOutcome: RobFailed, wantAmount: 150, wantActor: 850, wantVictim: 1000,
		},
		{
			name: "protection blocks and fines ten percent",
			victim: func(p *domain.Profile) {
				p.Balance = 1000
				p.Protection = domain.Protection{Active: true, ExpiresAt: future}
			},
			rolls:       []float64{0.99},
			wantOutcome: RobBlocked, wantAmount: 100, wantActor: 900, wantVictim: 1000,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			f.wallet(t, alice, 1000)
			f.seed(t, bob, tc.victim)
			f.setRolls(tc.rolls...)

			res, err := f.svc.Rob(ctx, alice, Target{UserID: "bob"})
			require.NoError(t, err)
			assert.Equal(t, tc.wantOutcome, res.Outcome)
			assert.Equal(t, tc.wantAmount, res.Amount)
			assert.Equal(t, tc.wantActor, f.profile(t, alice).Balance)
			assert.Equal(t, tc.wantVictim, f.profile(t, bob).Balance)

			_, err = f.svc.Rob(ctx, alice, Target{UserID: "bob"})
			requireAppError(t, err, apperrors.KindPrecondition, "cooldown")
		})
	}
}

func TestRob_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 1000)

	_, err := f.svc.Rob(ctx, alice, Target{UserID: "bob"})
	requireAppError(t, err, apperrors.KindNotFound, "target_missing")

	f.wallet(t, bob, 9)
	_, err = f.svc.Rob(ctx, alice, Target{UserID: "bob"})
	requireAppError(t, err, apperrors.KindPrecondition, "target_too_poor")

	_, err = f.svc.Rob(ctx, alice, Target{UserID: "alice"})
	requireAppError(t, err, apperrors.KindValidation, "invalid_target")

	assert.Zero(t, f.profile(t, alice).LastAction(domain.ActionRob), "rejected robbery must not stamp the cooldown")
}
