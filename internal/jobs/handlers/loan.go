// Package handlers processes background tasks enqueued by the jobs package.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	botfmt "github.com/Proton-105/econ-bot/internal/bot/handlers"
	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/i18n"
	"github.com/Proton-105/econ-bot/internal/jobs"
	"github.com/Proton-105/econ-bot/pkg/metrics"
)

// Loans is the part of the economy service the reminder tasks use.
type Loans interface {
	ClaimLoanReminder(ctx context.Context, key domain.Key) (*domain.Profile, bool, error)
	DueLoans(ctx context.Context) ([]*domain.Profile, error)
	Guild(ctx context.Context, guildID string) (*domain.GuildConfig, error)
}

// Notifier delivers a direct message to a user.
type Notifier interface {
	Notify(ctx context.Context, guildID, userID, text string) error
}

// LoanReminderHandler sends the due-date reminder of one loan.
type LoanReminderHandler struct {
	loans    Loans
	notifier Notifier
	catalog  *i18n.Manager
	log      *slog.Logger
}

func NewLoanReminderHandler(loans Loans, notifier Notifier, catalog *i18n.Manager, log *slog.Logger) *LoanReminderHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LoanReminderHandler{loans: loans, notifier: notifier, catalog: catalog, log: log}
}

func (h *LoanReminderHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload jobs.LoanReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.log.ErrorContext(ctx, "loan reminder: failed to decode payload",
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("decode payload: %w: %w", err, asynq.SkipRetry)
	}

	return remind(ctx, h.loans, h.notifier, h.catalog, h.log, payload.Key())
}

// LoanSweepHandler reminds every overdue borrower the per-loan tasks missed.
type LoanSweepHandler struct {
	loans    Loans
	notifier Notifier
	catalog  *i18n.Manager
	log      *slog.Logger
}

func NewLoanSweepHandler(loans Loans, notifier Notifier, catalog *i18n.Manager, log *slog.Logger) *LoanSweepHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LoanSweepHandler{loans: loans, notifier: notifier, catalog: catalog, log: log}
}

func (h *LoanSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	due, err := h.loans.DueLoans(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, p := range due {
		if err := remind(ctx, h.loans, h.notifier, h.catalog, h.log, p.Key()); err != nil {
			failed++
		}
	}

	h.log.InfoContext(ctx, "loan sweep finished",
		slog.String("task_type", t.Type()),
		slog.Int("due", len(due)),
		slog.Int("failed", failed),
	)
	return nil
}

// remind claims the reminder and delivers it. A claimed reminder that fails
// to deliver is not retried: the flag is already set and a second message
// would be worse than none.
func remind(ctx context.Context, loans Loans, notifier Notifier, catalog *i18n.Manager, log *slog.Logger, key domain.Key) error {
	log = log.With(slog.String("user_id", key.UserID), slog.String("guild_id", key.GuildID))

	p, claimed, err := loans.ClaimLoanReminder(ctx, key)
	if err != nil {
		metrics.RecordReminder("error")
		log.WarnContext(ctx, "loan reminder claim failed", slog.Any("error", err))
		return err
	}
	if !claimed {
		metrics.RecordReminder("skipped")
		log.DebugContext(ctx, "loan reminder not needed")
		return nil
	}

	t := translatorFor(ctx, loans, catalog, key.GuildID)
	text := i18n.Tf(t, "loan.reminder", map[string]any{
		"amount": botfmt.FormatCoins(t.Lang(), p.Loan.Amount),
	})

	if notifier == nil {
		metrics.RecordReminder("undelivered")
		log.WarnContext(ctx, "loan reminder has no notifier")
		return nil
	}
	if err := notifier.Notify(ctx, key.GuildID, key.UserID, text); err != nil {
		metrics.RecordReminder("undelivered")
		log.WarnContext(ctx, "loan reminder delivery failed", slog.Any("error", err))
		return nil
	}

	metrics.RecordReminder("sent")
	log.InfoContext(ctx, "loan reminder sent", slog.Int64("amount", p.Loan.Amount))
	return nil
}

func translatorFor(ctx context.Context, loans Loans, catalog *i18n.Manager, guildID string) i18n.Translator {
	lang := ""
	if g, err := loans.Guild(ctx, guildID); err == nil && g != nil {
		lang = g.Locale
	}
	return catalog.Translator(lang)
}
