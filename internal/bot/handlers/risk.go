package handlers

import (
	"github.com/Proton-105/econ-bot/internal/economy"
)

// NewCrimeHandler attempts a crime for a wallet-scaled reward.
func NewCrimeHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		res, err := svc.Crime(e.Context(), e.Key())
		if err != nil {
			return err
		}

		args := map[string]any{"amount": e.Coins(res.Amount), "balance": e.Coins(res.Profile.Balance)}
		if res.Success {
			return e.Respond(Response{Title: e.T("crime.title"), Text: e.Tf("crime.success", args), Color: ColorSuccess})
		}
		return e.Respond(Response{Title: e.T("crime.title"), Text: e.Tf("crime.caught", args), Color: ColorDanger})
	}
}

// NewRobHandler tries to steal from a mentioned user.
func NewRobHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		target, _ := e.Target()
		res, err := svc.Rob(e.Context(), e.Key(), target)
		if err != nil {
			return err
		}

		args := map[string]any{"amount": e.Coins(res.Amount), "target": e.Mention(target.UserID)}
		resp := Response{Title: e.T("rob.title"), Color: ColorDanger}
		switch res.Outcome {
		case economy.RobSucceeded:
			resp.Text = e.Tf("rob.success", args)
			resp.Color = ColorSuccess
		case economy.RobBlocked:
			resp.Text = e.Tf("rob.blocked", args)
		default:
			resp.Text = e.Tf("rob.failed", args)
		}
		return e.Respond(resp)
	}
}
