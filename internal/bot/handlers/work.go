package handlers

import (
	"fmt"

	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/economy"
)

// NewJobHandler lists the guild's jobs, or takes one when a name is given.
func NewJobHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		if e.Arg(0) == "" {
			guild, err := svc.Guild(e.Context(), e.GuildID)
			if err != nil {
				return err
			}

			jobs := economy.Jobs(guild)
			fields := make([]Field, 0, len(jobs))
			for _, name := range economy.JobNames(jobs) {
				rng := jobs[domain.Job(name)]
				fields = append(fields, Field{
					Name:   e.T("jobs." + name),
					Value:  fmt.Sprintf("%s – %s", e.Coins(rng.Min), e.Coins(rng.Max)),
					Inline: true,
				})
			}
			return e.info(e.T("work.jobs_title"), e.T("work.jobs_hint"), fields...)
		}

		p, err := svc.TakeJob(e.Context(), e.Key(), e.Arg(0))
		if err != nil {
			return err
		}
		return e.success("", e.Tf("work.hired", map[string]any{"job": e.T("jobs." + string(p.Job))}))
	}
}

// NewResignHandler leaves the current job.
func NewResignHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		former, err := svc.Resign(e.Context(), e.Key())
		if err != nil {
			return err
		}
		return e.Send(e.Tf("work.resigned", map[string]any{"job": e.T("jobs." + string(former))}))
	}
}

// NewSalaryHandler collects the job salary.
func NewSalaryHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		res, err := svc.Salary(e.Context(), e.Key())
		if err != nil {
			return err
		}
		return e.success(e.T("work.salary_title"), e.Tf("work.salary", map[string]any{
			"amount":  e.Coins(res.Amount),
			"job":     e.T("jobs." + string(res.Job)),
			"balance": e.Coins(res.Profile.Balance),
		}))
	}
}

// NewDailyHandler collects the daily gift.
func NewDailyHandler(svc *economy.Service) Handler {
	return func(e *Event) error {
		res, err := svc.Daily(e.Context(), e.Key())
		if err != nil {
			return err
		}
		return e.success(e.T("work.daily_title"), e.Tf("work.daily", map[string]any{
			"amount":  e.Coins(res.Amount),
			"balance": e.Coins(res.Profile.Balance),
		}))
	}
}
