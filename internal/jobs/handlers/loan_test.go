package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/i18n"
	"github.com/Proton-105/econ-bot/internal/jobs"
)

type fakeLoans struct {
	profiles map[domain.Key]*domain.Profile
	guild    *domain.GuildConfig
	claimErr error
}

func (f *fakeLoans) ClaimLoanReminder(_ context.Context, key domain.Key) (*domain.Profile, bool, error) {
	if f.claimErr != nil {
		return nil, false, f.claimErr
	}
	p, ok := f.profiles[key]
	if !ok || p.Loan.Reminded || p.Loan.Amount == 0 {
		return p, false, nil
	}
	p.Loan.Reminded = true
	return p, true, nil
}

func (f *fakeLoans) DueLoans(context.Context) ([]*domain.Profile, error) {
	var out []*domain.Profile
	for _, p := range f.profiles {
		if p.Loan.Amount > 0 && !p.Loan.Reminded {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLoans) Guild(context.Context, string) (*domain.GuildConfig, error) {
	return f.guild, nil
}

type sent struct {
	guildID, userID, text string
}

type fakeNotifier struct {
	sent []sent
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, guildID, userID, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{guildID, userID, text})
	return nil
}

func loadCatalog(t *testing.T) *i18n.Manager {
	t.Helper()
	catalog, err := i18n.LoadFromDir("../../../locales", "en")
	require.NoError(t, err)
	return catalog
}

func borrower(userID string, amount int64) *domain.Profile {
	due := time.Now().Add(-time.Minute)
	return &domain.Profile{UserID: userID, GuildID: "g1", Loan: domain.Loan{Amount: amount, DueDate: &due}}
}

func TestLoanReminderHandler_SendsOnce(t *testing.T) {
	ctx := context.Background()
	p := borrower("u1", 1100)
	loans := &fakeLoans{profiles: map[domain.Key]*domain.Profile{p.Key(): p}}
	notifier := &fakeNotifier{}
	h := NewLoanReminderHandler(loans, notifier, loadCatalog(t), nil)

	task, err := jobs.NewLoanReminderTask(p.Key(), *p.Loan.DueDate)
	require.NoError(t, err)

	require.NoError(t, h.ProcessTask(ctx, task))
	require.NoError(t, h.ProcessTask(ctx, task))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "u1", notifier.sent[0].userID)
	assert.Contains(t, notifier.sent[0].text, "1,100")
}

func TestLoanReminderHandler_UsesGuildLocale(t *testing.T) {
	p := borrower("u1", 500)
	loans := &fakeLoans{
		profiles: map[domain.Key]*domain.Profile{p.Key(): p},
		guild:    &domain.GuildConfig{GuildID: "g1", Locale: "ru"},
	}
	notifier := &fakeNotifier{}

	task, err := jobs.NewLoanReminderTask(p.Key(), *p.Loan.DueDate)
	require.NoError(t, err)
	require.NoError(t, NewLoanReminderHandler(loans, notifier, loadCatalog(t), nil).ProcessTask(context.Background(), task))

	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0].text, "Срок кредита")
}

func TestLoanReminderHandler_BadPayloadSkipsRetry(t *testing.T) {
	h := NewLoanReminderHandler(&fakeLoans{}, &fakeNotifier{}, loadCatalog(t), nil)

	err := h.ProcessTask(context.Background(), asynq.NewTask(jobs.TaskTypeLoanReminder, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestLoanReminderHandler_ClaimErrorRetries(t *testing.T) {
	p := borrower("u1", 500)
	h := NewLoanReminderHandler(&fakeLoans{claimErr: errors.New("db down")}, &fakeNotifier{}, loadCatalog(t), nil)

	task, err := jobs.NewLoanReminderTask(p.Key(), *p.Loan.DueDate)
	require.NoError(t, err)
	assert.Error(t, h.ProcessTask(context.Background(), task))
}

func TestLoanSweepHandler(t *testing.T) {
	a, b := borrower("a", 100), borrower("b", 200)
	b.Loan.Reminded = true
	c := borrower("c", 300)
	loans := &fakeLoans{profiles: map[domain.Key]*domain.Profile{a.Key(): a, b.Key(): b, c.Key(): c}}
	notifier := &fakeNotifier{}

	h := NewLoanSweepHandler(loans, notifier, loadCatalog(t), nil)
	require.NoError(t, h.ProcessTask(context.Background(), jobs.NewLoanSweepTask()))
	assert.Len(t, notifier.sent, 2)

	require.NoError(t, h.ProcessTask(context.Background(), jobs.NewLoanSweepTask()))
	assert.Len(t, notifier.sent, 2)
}

func TestLoanSweepHandler_DeliveryFailureIsNotRetried(t *testing.T) {
	a := borrower("a", 100)
	loans := &fakeLoans{profiles: map[domain.Key]*domain.Profile{a.Key(): a}}

	h := NewLoanSweepHandler(loans, &fakeNotifier{err: errors.New("dm closed")}, loadCatalog(t), nil)
	require.NoError(t, h.ProcessTask(context.Background(), jobs.NewLoanSweepTask()))
	assert.True(t, a.Loan.Reminded)
}
