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

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		input   string
		want    Amount
		wantErr bool
	}{
		{input: "100", want: Amount{Value: 100}},
		{input: " ALL ", want: Amount{All: true}},
		{input: "0", wantErr: true},
		{input: "-5", wantErr: true},
		{input: "10.5", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseAmount(tc.input)
			if tc.wantErr {
				requireAppError(t, err, apperrors.KindValidation, "invalid_amount")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCheckCooldown(t *testing.T) {
	now := time.UnixMilli(1_000_000_000)
	p := domain.NewProfile(alice, now)

	assert.True(t, CheckCooldown(p, domain.ActionCrime, 30*time.Minute, now).Allowed)

	p.Stamp(domain.ActionCrime, now)
	res := CheckCooldown(p, domain.ActionCrime, 30*time.Minute, now.Add(10*time.Minute))
	assert.False(t, res.Allowed)
	assert.Equal(t, 20*time.Minute, res.Remaining)

	assert.True(t, CheckCooldown(p, domain.ActionCrime, 30*time.Minute, now.Add(30*time.Minute)).Allowed)
}

func TestCooldownFor(t *testing.T) {
	guild := &domain.GuildConfig{Cooldowns: map[domain.Action]int64{
		domain.ActionRob:  60_000,
		domain.ActionDice: 1,
	}}

	assert.Equal(t, time.Minute, CooldownFor(guild, domain.ActionRob))
	assert.Equal(t, 30*time.Minute, CooldownFor(guild, domain.ActionCrime))
	assert.Equal(t, GameCooldown, CooldownFor(guild, domain.ActionDice))
	assert.Equal(t, 24*time.Hour, CooldownFor(nil, domain.ActionDaily))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "2s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "5m 0s", FormatDuration(5*time.Minute))
	assert.Equal(t, "1h 1m 1s", FormatDuration(time.Hour+time.Minute+time.Second))
}

func TestDepositWithdraw(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 300)

	res, err := f.svc.Deposit(ctx, alice, "100")
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.Amount)
	assert.Equal(t, int64(200), res.Source.Balance)
	assert.Equal(t, int64(100), res.Source.Bank)

	res, err = f.svc.Deposit(ctx, alice, "all")
	require.NoError(t, err)
	assert.Equal(t, int64(200), res.Amount)

	_, err = f.svc.Deposit(ctx, alice, "all")
	requireAppError(t, err, apperrors.KindPrecondition, "insufficient_funds")

	_, err = f.svc.Withdraw(ctx, alice, "301")
	requireAppError(t, err, apperrors.KindPrecondition, "insufficient_funds")

	res, err = f.svc.Withdraw(ctx, alice, "all")
	require.NoError(t, err)
	assert.Equal(t, int64(300), res.Dest.Balance)
	assert.Zero(t, res.Dest.Bank)
}

func TestTransfer_ConservesTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 500)

	res, err := f.svc.Transfer(ctx, alice, Target{UserID: "bob"}, "200")
	require.NoError(t, err)
	assert.Equal(t, int64(300), res.Source.Balance)
	assert.Equal(t, int64(200), res.Dest.Balance)

	assert.Equal(t, int64(200), res.Source.Stats.TotalSpent)
	assert.Equal(t, int64(200), res.Dest.Stats.TotalEarned)

	_, err = f.svc.Tip(ctx, alice, Target{UserID: "bob"}, "all")
	require.NoError(t, err)

	sender, receiver := f.profile(t, alice), f.profile(t, bob)
	assert.Zero(t, sender.Balance)
	assert.Equal(t, int64(500), receiver.Balance)
	assert.Equal(t, int64(500), sender.Stats.TotalSpent)
	assert.Equal(t, int64(500), receiver.Stats.TotalEarned)
	assert.Zero(t, sender.Stats.TotalEarned)
	assert.Zero(t, receiver.Stats.TotalSpent)
}

func TestTransfer_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 50)

	_, err := f.svc.Transfer(ctx, alice, Target{UserID: "alice"}, "10")
	requireAppError(t, err, apperrors.KindValidation, "invalid_target")

	_, err = f.svc.Transfer(ctx, alice, Target{UserID: "robot", Bot: true}, "10")
	requireAppError(t, err, apperrors.KindValidation, "invalid_target")

	_, err = f.svc.Transfer(ctx, alice, Target{}, "10")
	requireAppError(t, err, apperrors.KindValidation, "target_required")

	_, err = f.svc.Transfer(ctx, alice, Target{UserID: "bob"}, "51")
	requireAppError(t, err, apperrors.KindPrecondition, "insufficient_funds")

	assert.Equal(t, int64(50), f.profile(t, alice).Balance)
}

func TestSetupAndValidateChannel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cfg, err := f.svc.Guild(ctx, guildID)
	require.NoError(t, err)
	assert.NoError(t, ValidateChannel(cfg, domain.ChannelEconomy, "anywhere"))

	_, err = f.svc.Setup(ctx, guildID, domain.ChannelKind("lobby"), "c9")
	requireAppError(t, err, apperrors.KindValidation, "unknown_channel_kind")

	cfg, err = f.svc.Setup(ctx, guildID, domain.ChannelEconomy, "eco")
	require.NoError(t, err)

	assert.NoError(t, ValidateChannel(cfg, domain.ChannelEconomy, "eco"))
	requireAppError(t, ValidateChannel(cfg, domain.ChannelEconomy, "other"), apperrors.KindPrecondition, "wrong_channel")
	assert.NoError(t, ValidateChannel(cfg, domain.ChannelGames, "eco"), "games fall back to the economy channel")

	cfg, err = f.svc.Setup(ctx, guildID, domain.ChannelGames, "casino")
	require.NoError(t, err)
	assert.NoError(t, ValidateChannel(cfg, domain.ChannelGames, "casino"))
	assert.Error(t, ValidateChannel(cfg, domain.ChannelGames, "eco"))
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 100)
	f.seed(t, bob, func(p *domain.Profile) { p.Bank = 1000 })

	top, err := f.svc.Leaderboard(ctx, guildID, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "bob", top[0].UserID)
}
