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

func TestJobs_TakeAndResign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.TakeJob(ctx, alice, "astronaut")
	requireAppError(t, err, apperrors.KindValidation, "unknown_job")

	p, err := f.svc.TakeJob(ctx, alice, "Cashier")
	require.NoError(t, err)
	assert.Equal(t, domain.JobCashier, p.Job)

	_, err = f.svc.TakeJob(ctx, alice, "doctor")
	requireAppError(t, err, apperrors.KindPrecondition, "already_employed")

	former, err := f.svc.Resign(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCashier, former)

	_, err = f.svc.Resign(ctx, alice)
	requireAppError(t, err, apperrors.KindPrecondition, "unemployed")
}

func TestSalary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Salary(ctx, alice)
	requireAppError(t, err, apperrors.KindPrecondition, "unemployed")

	_, err = f.svc.TakeJob(ctx, alice, "cashier")
	require.NoError(t, err)

	f.setRolls(0)
	res, err := f.svc.Salary(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(200), res.Amount)

	_, err = f.svc.Salary(ctx, alice)
	requireAppError(t, err, apperrors.KindPrecondition, "cooldown")

	f.clock.Advance(24 * time.Hour)
	f.setRolls(0.999)
	res, err = f.svc.Salary(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(400), res.Amount)

	p := f.profile(t, alice)
	assert.Equal(t, int64(600), p.Balance)
	assert.Equal(t, int64(600), p.Stats.TotalSalary)
}

func TestSalary_RetiredJob(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, alice, func(p *domain.Profile) { p.Job = "blacksmith" })

	_, err := f.svc.Salary(ctx, alice)
	requireAppError(t, err, apperrors.KindPrecondition, "job_retired")
}

func TestDaily(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.svc.Daily(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Amount)

	_, err = f.svc.Daily(ctx, alice)
	requireAppError(t, err, apperrors.KindPrecondition, "cooldown")

	require.NoError(t, f.guilds.Save(ctx, &domain.GuildConfig{
		GuildID: guildID,
		Economy: domain.EconomySettings{DailyReward: 250},
	}))
	f.clock.Advance(24 * time.Hour)

	res, err = f.svc.Daily(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), res.Profile.Balance)
}

func TestShop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 2000)

	catalog, err := f.svc.Shop(ctx, guildID)
	require.NoError(t, err)
	assert.Equal(t, DefaultShop, catalog)

	_, _, err = f.svc.Buy(ctx, alice, "spaceship")
	requireAppError(t, err, apperrors.KindNotFound, "unknown_item")

	_, _, err = f.svc.Buy(ctx, alice, "laptop")
	requireAppError(t, err, apperrors.KindPrecondition, "insufficient_funds")

	item, p, err := f.svc.Buy(ctx, alice, "Fishing Rod")
	require.NoError(t, err)
	assert.Equal(t, "fishing_rod", item.ID)
	assert.Equal(t, int64(500), p.Balance)

	_, _, err = f.svc.Buy(ctx, alice, "fishing_rod")
	requireAppError(t, err, apperrors.KindPrecondition, "already_owned")

	items, err := f.svc.Inventory(ctx, alice)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fishing Rod", items[0].Name)
}

func TestBuyProtection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 3000)

	p, err := f.svc.BuyProtection(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(500), p.Balance)
	assert.True(t, p.Protected(f.clock.Now()))
	assert.Equal(t, f.clock.Now().Add(24*time.Hour), p.Protection.ExpiresAt)

	_, err = f.svc.BuyProtection(ctx, alice)
	requireAppError(t, err, apperrors.KindPrecondition, "already_protected")

	f.clock.Advance(24 * time.Hour)
	assert.False(t, f.profile(t, alice).Protected(f.clock.Now()))
}
