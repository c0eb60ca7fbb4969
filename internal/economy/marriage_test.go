package economy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

func marry(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()

	prop, err := f.svc.Propose(ctx, scope, alice, Target{UserID: "bob"})
	require.NoError(t, err)
	_, err = f.svc.AcceptProposal(ctx, scope, bob, prop.SessionID)
	require.NoError(t, err)
}

func TestProposal_AcceptChargesRingAndLinksBoth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 6000)

	prop, err := f.svc.Propose(ctx, scope, alice, Target{UserID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, defaultRingPrice, prop.Amount)
	assert.Equal(t, int64(6000), f.profile(t, alice).Balance, "nothing is charged until acceptance")

	_, err = f.svc.AcceptProposal(ctx, scope, alice, prop.SessionID)
	requireAppError(t, err, apperrors.KindPrecondition, "not_addressed_to_you")

	_, err = f.svc.AcceptProposal(ctx, scope, bob, prop.SessionID)
	require.NoError(t, err)

	a, b := f.profile(t, alice), f.profile(t, bob)
	assert.Equal(t, int64(1000), a.Balance)
	require.True(t, a.Married())
	require.True(t, b.Married())
	assert.Equal(t, "bob", a.Marriage.PartnerID)
	assert.Equal(t, "alice", b.Marriage.PartnerID)

	_, err = f.svc.AcceptProposal(ctx, scope, bob, prop.SessionID)
	requireAppError(t, err, apperrors.KindNotFound, "session_expired")
}

func TestProposal_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 100)

	_, err := f.svc.Propose(ctx, scope, alice, Target{UserID: "bob"})
	requireAppError(t, err, apperrors.KindPrecondition, "insufficient_funds")

	_, err = f.svc.Propose(ctx, scope, alice, Target{UserID: "alice"})
	requireAppError(t, err, apperrors.KindValidation, "invalid_target")

	f.wallet(t, alice, 10000)
	f.seed(t, domain.Key{UserID: "carol", GuildID: guildID}, func(p *domain.Profile) {
		p.Marriage = &domain.Marriage{PartnerID: "dave"}
	})
	_, err = f.svc.Propose(ctx, scope, alice, Target{UserID: "carol"})
	requireAppError(t, err, apperrors.KindPrecondition, "target_married")
}

func TestProposal_RejectLeavesLedgerUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 6000)

	prop, err := f.svc.Propose(ctx, scope, alice, Target{UserID: "bob"})
	require.NoError(t, err)

	_, err = f.svc.RejectProposal(ctx, scope, bob, prop.SessionID)
	require.NoError(t, err)

	assert.Equal(t, int64(6000), f.profile(t, alice).Balance)
	assert.False(t, f.profile(t, alice).Married())
}

func TestProposal_AcceptRechecksFunds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 6000)

	prop, err := f.svc.Propose(ctx, scope, alice, Target{UserID: "bob"})
	require.NoError(t, err)

	f.wallet(t, alice, 10)
	_, err = f.svc.AcceptProposal(ctx, scope, bob, prop.SessionID)
	requireAppError(t, err, apperrors.KindPrecondition, "insufficient_funds")
	assert.False(t, f.profile(t, bob).Married())
}

func TestDivorce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 6000)
	marry(t, f)

	partner, err := f.svc.Divorce(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, "alice", partner)
	assert.False(t, f.profile(t, alice).Married())
	assert.False(t, f.profile(t, bob).Married())

	_, err = f.svc.Divorce(ctx, bob)
	requireAppError(t, err, apperrors.KindPrecondition, "not_married")
}

func TestKhula(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 6000)
	marry(t, f)
	f.wallet(t, bob, 3000)

	req, err := f.svc.RequestKhula(ctx, scope, bob)
	require.NoError(t, err)
	assert.Equal(t, "alice", req.TargetID)
	assert.Equal(t, defaultRingPrice/2, req.Amount)

	_, err = f.svc.AcceptKhula(ctx, scope, bob, req.SessionID)
	requireAppError(t, err, apperrors.KindPrecondition, "not_addressed_to_you")

	_, err = f.svc.AcceptKhula(ctx, scope, alice, req.SessionID)
	require.NoError(t, err)

	a, b := f.profile(t, alice), f.profile(t, bob)
	assert.Equal(t, int64(1000+2500), a.Balance)
	assert.Equal(t, int64(500), b.Balance)
	assert.False(t, a.Married())
	assert.False(t, b.Married())
}

func TestKhula_RejectKeepsMarriage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.wallet(t, alice, 6000)
	marry(t, f)
	f.wallet(t, bob, 3000)

	req, err := f.svc.RequestKhula(ctx, scope, bob)
	require.NoError(t, err)

	_, err = f.svc.RejectKhula(ctx, scope, alice, req.SessionID)
	require.NoError(t, err)
	assert.True(t, f.profile(t, bob).Married())
	assert.Equal(t, int64(3000), f.profile(t, bob).Balance)
}

func TestKhula_RequiresMarriageAndFunds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.RequestKhula(ctx, scope, bob)
	requireAppError(t, err, apperrors.KindPrecondition, "not_married")

	f.wallet(t, alice, 6000)
	marry(t, f)
	_, err = f.svc.RequestKhula(ctx, scope, bob)
	requireAppError(t, err, apperrors.KindPrecondition, "insufficient_funds")
}
