package economy

import (
	"context"
	"errors"
	"math"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/internal/repository"
	"github.com/Proton-105/econ-bot/pkg/metrics"
)

const (
	crimeMinReward   int64 = 1000
	crimeMaxReward   int64 = 10000
	crimeSuccessOver       = 0.5
	crimeFinePct     int64 = 70

	robMinTargetBalance int64 = 10
	robMaxSteal         int64 = 500
	robStealPct         int64 = 30
	robSuccessOver            = 0.6
	robFailFinePct      int64 = 15
	robBlockedFinePct   int64 = 10
)

// CrimeResult reports a crime attempt. Amount is the reward on success and
// the fine on failure.
type CrimeResult struct {
	Success bool
	Amount  int64
	Profile *domain.Profile
}

// Crime gambles for a reward scaled by the actor's wallet.
func (s *Service) Crime(ctx context.Context, key domain.Key) (*CrimeResult, error) {
	guild, err := s.guild(ctx, key.GuildID)
	if err != nil {
		return nil, err
	}

	res := &CrimeResult{}
	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		now := s.now()
		if err := s.gate(p, guild, domain.ActionCrime, now); err != nil {
			return err
		}

		success := s.rnd.Float64() > crimeSuccessOver

		maxReward := min(p.Balance/2, crimeMaxReward)
		if maxReward < crimeMinReward {
			maxReward = crimeMinReward
		}
		reward := int64(math.Floor(s.rnd.Float64()*float64(maxReward-crimeMinReward))) + crimeMinReward

		if success {
			p.Balance += reward
			p.Stats.TotalEarned += reward
			res.Amount = reward
		} else {
			fine := min(reward*crimeFinePct/100, p.Balance)
			p.Balance -= fine
			p.Stats.TotalLost += fine
			res.Amount = fine
		}
		res.Success = success

		p.Stats.CrimesCommitted++
		p.Stamp(domain.ActionCrime, now)
		return nil
	})
	if err != nil {
		return nil, s.storeErr("crime", err)
	}

	res.Profile = p
	metrics.RecordLedger("crime", res.Amount)
	return res, nil
}

// RobOutcome classifies a robbery.
type RobOutcome string

const (
	RobSucceeded RobOutcome = "success"
	RobFailed    RobOutcome = "failed"
	RobBlocked   RobOutcome = "blocked"
)

// RobResult reports a robbery. Amount is what was stolen, or the fine paid.
type RobResult struct {
	Outcome RobOutcome
	Amount  int64
	Actor   *domain.Profile
	Victim  *domain.Profile
}

// Rob tries to take part of another user's wallet. The target must already
// have a profile.
func (s *Service) Rob(ctx context.Context, key domain.Key, target Target) (*RobResult, error) {
	if err := validateTarget(key, target); err != nil {
		return nil, err
	}

	guild, err := s.guild(ctx, key.GuildID)
	if err != nil {
		return nil, err
	}

	victimKey := domain.Key{UserID: target.UserID, GuildID: key.GuildID}
	res := &RobResult{}

	actor, victim, err := s.profiles.UpdatePair(ctx, key, victimKey, repository.PairOptions{},
		func(actor, victim *domain.Profile) error {
			now := s.now()
			if err := s.gate(actor, guild, domain.ActionRob, now); err != nil {
				return err
			}
			if victim.Balance < robMinTargetBalance {
				return apperrors.NewPreconditionError("target_too_poor",
					"That user doesn't have enough coins to rob.", nil)
			}

			switch {
			case victim.Protected(now):
				fine := actor.Balance * robBlockedFinePct / 100
				actor.Balance -= fine
				actor.Stats.TotalLost += fine
				res.Outcome, res.Amount = RobBlocked, fine
			default:
				if s.rnd.Float64() > robSuccessOver {
					stolen := int64(math.Floor(s.rnd.Float64() * float64(min(victim.Balance*robStealPct/100, robMaxSteal))))
					actor.Balance += stolen
					victim.Balance -= stolen
					actor.Stats.TotalStolen += stolen
					victim.Stats.TotalLost += stolen
					res.Outcome, res.Amount = RobSucceeded, stolen
				} else {
					fine := actor.Balance * robFailFinePct / 100
					actor.Balance -= fine
					actor.Stats.TotalLost += fine
					res.Outcome, res.Amount = RobFailed, fine
				}
			}

			actor.Stats.CrimesCommitted++
			actor.Stamp(domain.ActionRob, now)
			return nil
		})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("target_missing",
				"That user has no profile in this server yet.", nil)
		}
		return nil, s.storeErr("rob", err)
	}

	res.Actor, res.Victim = actor, victim
	metrics.RecordLedger("rob", res.Amount)
	return res, nil
}
