package economy

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/pkg/metrics"
)

// PayoutResult reports a salary or daily reward.
type PayoutResult struct {
	Amount  int64
	Job     domain.Job
	Profile *domain.Profile
}

// TakeJob employs the caller in one of the guild's jobs.
func (s *Service) TakeJob(ctx context.Context, key domain.Key, name string) (*domain.Profile, error) {
	guild, err := s.guild(ctx, key.GuildID)
	if err != nil {
		return nil, err
	}

	job := domain.Job(strings.ToLower(strings.TrimSpace(name)))
	jobs := Jobs(guild)
	if _, ok := jobs[job]; !ok {
		return nil, apperrors.NewValidationError("unknown_job", "There is no such job.",
			map[string]any{"jobs": strings.Join(JobNames(jobs), ", ")})
	}

	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		if p.Job != "" {
			return apperrors.NewPreconditionError("already_employed", "You already have a job. Resign first.",
				map[string]any{"job": string(p.Job)})
		}
		p.Job = job
		return nil
	})
	if err != nil {
		return nil, s.storeErr("job.take", err)
	}
	return p, nil
}

// Resign clears the caller's job.
func (s *Service) Resign(ctx context.Context, key domain.Key) (domain.Job, error) {
	var former domain.Job
	_, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		if p.Job == "" {
			return unemployed()
		}
		former = p.Job
		p.Job = ""
		return nil
	})
	if err != nil {
		return "", s.storeErr("job.resign", err)
	}
	return former, nil
}

func unemployed() error {
	return apperrors.NewPreconditionError("unemployed", "You don't have a job.", nil)
}

// Salary pays a uniform draw from the job's inclusive salary range.
func (s *Service) Salary(ctx context.Context, key domain.Key) (*PayoutResult, error) {
	guild, err := s.guild(ctx, key.GuildID)
	if err != nil {
		return nil, err
	}
	jobs := Jobs(guild)

	res := &PayoutResult{}
	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		if p.Job == "" {
			return unemployed()
		}
		now := s.now()
		if err := s.gate(p, guild, domain.ActionSalary, now); err != nil {
			return err
		}

		rng, ok := jobs[p.Job]
		if !ok {
			return apperrors.NewPreconditionError("job_retired", "Your job no longer exists here. Pick a new one.",
				map[string]any{"job": string(p.Job)})
		}

		pay := rng.Min + int64(math.Floor(s.rnd.Float64()*float64(rng.Max-rng.Min+1)))
		pay = min(pay, rng.Max)

		p.Balance += pay
		p.Stats.TotalSalary += pay
		p.Stats.TotalEarned += pay
		p.Stamp(domain.ActionSalary, now)
		res.Amount, res.Job = pay, p.Job
		return nil
	})
	if err != nil {
		return nil, s.storeErr("salary", err)
	}

	res.Profile = p
	metrics.RecordLedger("salary", res.Amount)
	return res, nil
}

// Daily pays the guild's fixed daily reward.
func (s *Service) Daily(ctx context.Context, key domain.Key) (*PayoutResult, error) {
	guild, err := s.guild(ctx, key.GuildID)
	if err != nil {
		return nil, err
	}
	reward := dailyReward(guild)

	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		now := s.now()
		if err := s.gate(p, guild, domain.ActionDaily, now); err != nil {
			return err
		}
		p.Balance += reward
		p.Stats.TotalEarned += reward
		p.Stamp(domain.ActionDaily, now)
		return nil
	})
	if err != nil {
		return nil, s.storeErr("daily", err)
	}

	metrics.RecordLedger("daily", reward)
	return &PayoutResult{Amount: reward, Profile: p}, nil
}

// JobNames lists jobs sorted by minimum salary.
func JobNames(jobs map[domain.Job]domain.SalaryRange) []string {
	names := make([]string, 0, len(jobs))
	for job := range jobs {
		names = append(names, string(job))
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := jobs[domain.Job(names[i])], jobs[domain.Job(names[j])]
		if a.Min != b.Min {
			return a.Min < b.Min
		}
		return names[i] < names[j]
	})
	return names
}
