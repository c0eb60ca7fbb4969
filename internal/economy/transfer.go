package economy

import (
	"context"

	"github.com/Proton-105/econ-bot/internal/domain"
	"github.com/Proton-105/econ-bot/internal/repository"
	"github.com/Proton-105/econ-bot/pkg/metrics"
)

// TransferResult reports a completed movement of coins.
type TransferResult struct {
	Amount int64
	Source *domain.Profile
	Dest   *domain.Profile
}

// Deposit moves coins from the wallet to the bank.
func (s *Service) Deposit(ctx context.Context, key domain.Key, raw string) (*TransferResult, error) {
	amt, err := ParseAmount(raw)
	if err != nil {
		return nil, err
	}

	var moved int64
	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		n, err := take(amt, p.Balance)
		if err != nil {
			return err
		}
		p.Balance -= n
		p.Bank += n
		moved = n
		return nil
	})
	if err != nil {
		return nil, s.storeErr("deposit", err)
	}

	metrics.RecordLedger("deposit", moved)
	return &TransferResult{Amount: moved, Source: p, Dest: p}, nil
}

// Withdraw moves coins from the bank to the wallet.
func (s *Service) Withdraw(ctx context.Context, key domain.Key, raw string) (*TransferResult, error) {
	amt, err := ParseAmount(raw)
	if err != nil {
		return nil, err
	}

	var moved int64
	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		n, err := take(amt, p.Bank)
		if err != nil {
			return err
		}
		p.Bank -= n
		p.Balance += n
		moved = n
		return nil
	})
	if err != nil {
		return nil, s.storeErr("withdraw", err)
	}

	metrics.RecordLedger("withdraw", moved)
	return &TransferResult{Amount: moved, Source: p, Dest: p}, nil
}

// Transfer pays another user from the wallet.
func (s *Service) Transfer(ctx context.Context, from domain.Key, to Target, raw string) (*TransferResult, error) {
	return s.pay(ctx, "transfer", from, to, raw)
}

// Tip is a transfer presented as a gift; the ledger effect is identical.
func (s *Service) Tip(ctx context.Context, from domain.Key, to Target, raw string) (*TransferResult, error) {
	return s.pay(ctx, "tip", from, to, raw)
}

func (s *Service) pay(ctx context.Context, op string, from domain.Key, to Target, raw string) (*TransferResult, error) {
	if err := validateTarget(from, to); err != nil {
		return nil, err
	}

	amt, err := ParseAmount(raw)
	if err != nil {
		return nil, err
	}

	toKey := domain.Key{UserID: to.UserID, GuildID: from.GuildID}

	var moved int64
	src, dst, err := s.profiles.UpdatePair(ctx, from, toKey, repository.PairOptions{CreateSecond: true},
		func(src, dst *domain.Profile) error {
			n, err := take(amt, src.Balance)
			if err != nil {
				return err
			}
			src.Balance -= n
			dst.Balance += n
			src.Stats.TotalSpent += n
			dst.Stats.TotalEarned += n
			moved = n
			return nil
		})
	if err != nil {
		return nil, s.storeErr(op, err)
	}

	metrics.RecordLedger(op, moved)
	return &TransferResult{Amount: moved, Source: src, Dest: dst}, nil
}
