package handlers

import (
	"github.com/Proton-105/econ-bot/internal/economy"
)

// NewLoanHandler shows the active loan, or takes one when an amount is given.
func NewLoanHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		if e.Arg(0) == "" {
			return e.loanStatus(svc)
		}

		res, err := svc.RequestLoan(e.Context(), e.Key(), e.Arg(0))
		if err != nil {
			return err
		}

		loan := res.Profile.Loan
		return e.Respond(Response{
			Title: e.T("loan.title"),
			Text: e.Tf("loan.granted", map[string]any{
				"amount": e.Coins(res.Principal),
				"owed":   e.Coins(loan.Amount),
				"due":    e.when(*loan.DueDate),
			}),
			Color: ColorSuccess,
		})
	}
}

func (e *Event) loanStatus(svc *economy.Service) error {
	p, err := svc.Balance(e.Context(), e.Key())
	if err != nil {
		return err
	}
	if !p.HasActiveLoan() {
		return e.info(e.T("loan.title"), e.T("loan.none"))
	}

	fields := []Field{
		{Name: e.T("loan.owed"), Value: e.Coins(p.Loan.Amount), Inline: true},
		{Name: e.T("loan.issued"), Value: e.Coins(p.Loan.Issued), Inline: true},
	}
	if p.Loan.DueDate != nil {
		fields = append(fields, Field{Name: e.T("loan.due"), Value: e.when(*p.Loan.DueDate), Inline: true})
	}
	return e.info(e.T("loan.title"), "", fields...)
}

// NewRepayHandler pays down the active loan.
func NewRepayHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		res, err := svc.RepayLoan(e.Context(), e.Key(), e.Arg(0))
		if err != nil {
			return err
		}

		if !res.Profile.HasActiveLoan() {
			return e.success(e.T("loan.title"), e.Tf("loan.cleared", map[string]any{"amount": e.Coins(res.Paid)}))
		}
		return e.success(e.T("loan.title"), e.Tf("loan.repaid", map[string]any{
			"amount":    e.Coins(res.Paid),
			"remaining": e.Coins(res.Profile.Loan.Amount),
		}))
	}
}
