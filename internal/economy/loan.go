package economy

import (
	"context"
	"log/slog"
	"time"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/pkg/metrics"
)

// LoanResult reports a loan issue or repayment.
type LoanResult struct {
	Principal int64
	Paid      int64
	Profile   *domain.Profile
}

// RequestLoan credits principal and records principal plus interest as owed,
// due in seven days. Only one loan may be active.
func (s *Service) RequestLoan(ctx context.Context, key domain.Key, raw string) (*LoanResult, error) {
	amt, err := ParseAmount(raw)
	if err != nil {
		return nil, err
	}
	if amt.All {
		return nil, apperrors.NewValidationError("invalid_amount", "Loans need an exact amount.", map[string]any{"input": raw})
	}

	guild, err := s.guild(ctx, key.GuildID)
	if err != nil {
		return nil, err
	}
	if limit := maxLoan(guild); amt.Value > limit {
		return nil, apperrors.NewPreconditionError("loan_too_large",
			"That loan exceeds the server limit.", map[string]any{"max": limit})
	}
	bps := interestBasisPoints(guild)

	var due time.Time
	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		if p.HasActiveLoan() {
			return apperrors.NewPreconditionError("loan_active", "You already have an active loan.",
				map[string]any{"owed": p.Loan.Amount})
		}

		owed := amt.Value + amt.Value*bps/10000
		due = s.now().Add(loanTerm)
		p.Balance += amt.Value
		p.Loan = domain.Loan{Amount: owed, Issued: owed, DueDate: &due}
		return nil
	})
	if err != nil {
		return nil, s.storeErr("loan.request", err)
	}

	if err := s.reminder.ScheduleLoanReminder(ctx, key, due); err != nil {
		// The periodic sweep still finds the loan once it is due.
		s.log.Warn("loan reminder not scheduled",
			slog.String("user_id", key.UserID),
			slog.String("guild_id", key.GuildID),
			slog.Any("error", err),
		)
	}

	metrics.RecordLedger("loan", amt.Value)
	return &LoanResult{Principal: amt.Value, Profile: p}, nil
}

// RepayLoan pays down the active loan from the wallet. "all" repays the
// whole outstanding amount.
func (s *Service) RepayLoan(ctx context.Context, key domain.Key, raw string) (*LoanResult, error) {
	amt, err := ParseAmount(raw)
	if err != nil {
		return nil, err
	}

	var paid int64
	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		if !p.HasActiveLoan() {
			return apperrors.NewPreconditionError("no_loan", "You don't have an active loan.", nil)
		}

		n := amt.Resolve(p.Loan.Amount)
		if n > p.Loan.Amount {
			return apperrors.NewPreconditionError("repay_exceeds_loan",
				"You're trying to repay more than you owe.", map[string]any{"owed": p.Loan.Amount})
		}
		if n > p.Balance {
			return insufficientFunds(p.Balance, n)
		}

		p.Balance -= n
		p.Loan.Amount -= n
		p.Loan.Payments = append(p.Loan.Payments, domain.Payment{Amount: n, Date: s.now()})
		if p.Loan.Amount == 0 {
			p.Loan.DueDate = nil
			p.Loan.Reminded = false
		}
		paid = n
		return nil
	})
	if err != nil {
		return nil, s.storeErr("loan.repay", err)
	}

	metrics.RecordLedger("repay", paid)
	return &LoanResult{Paid: paid, Profile: p}, nil
}

// ClaimLoanReminder marks a due, unreminded loan as reminded and reports
// whether the caller should deliver the reminder. It is safe to call from
// both the per-loan task and the sweep.
func (s *Service) ClaimLoanReminder(ctx context.Context, key domain.Key) (*domain.Profile, bool, error) {
	claimed := false
	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		if !p.HasActiveLoan() || p.Loan.DueDate == nil || p.Loan.Reminded {
			return nil
		}
		if p.Loan.DueDate.After(s.now()) {
			return nil
		}
		p.Loan.Reminded = true
		claimed = true
		return nil
	})
	if err != nil {
		return nil, false, s.storeErr("loan.remind", err)
	}
	return p, claimed, nil
}

// DueLoans lists profiles whose loans are due by now and not yet reminded.
func (s *Service) DueLoans(ctx context.Context) ([]*domain.Profile, error) {
	due, err := s.profiles.LoansDue(ctx, s.now())
	if err != nil {
		return nil, s.storeErr("loan.due", err)
	}

	out := due[:0]
	for _, p := range due {
		if !p.Loan.Reminded {
			out = append(out, p)
		}
	}
	return out, nil
}

// PendingLoans lists every active loan with a due date, for re-arming
// reminders after a restart.
func (s *Service) PendingLoans(ctx context.Context) ([]*domain.Profile, error) {
	all, err := s.profiles.ActiveLoans(ctx)
	if err != nil {
		return nil, s.storeErr("loan.pending", err)
	}
	return all, nil
}
