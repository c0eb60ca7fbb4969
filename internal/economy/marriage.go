package economy

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/internal/repository"
	"github.com/Proton-105/econ-bot/internal/session"
	"github.com/Proton-105/econ-bot/pkg/metrics"
)

const ringName = "Diamond Ring"

// Proposal is a pending marriage or khula request awaiting the target.
type Proposal struct {
	SessionID   string
	Kind        session.Kind
	InitiatorID string
	TargetID    string
	Amount      int64
	Session     *session.Session
}

type proposalData struct {
	Amount int64 `json:"amount"`
}

// Propose asks target to marry the caller. The ring is paid only on acceptance.
func (s *Service) Propose(ctx context.Context, scope Scope, key domain.Key, target Target) (*Proposal, error) {
	if err := validateTarget(key, target); err != nil {
		return nil, err
	}

	guild, err := s.guild(ctx, key.GuildID)
	if err != nil {
		return nil, err
	}
	price := ringPrice(guild)

	proposer, err := s.profiles.GetOrCreate(ctx, key)
	if err != nil {
		return nil, s.storeErr("propose", err)
	}
	partner, err := s.profiles.GetOrCreate(ctx, domain.Key{UserID: target.UserID, GuildID: key.GuildID})
	if err != nil {
		return nil, s.storeErr("propose", err)
	}

	if err := checkUnmarried(proposer, partner); err != nil {
		return nil, err
	}
	if proposer.Balance < price {
		return nil, insufficientFunds(proposer.Balance, price)
	}

	return s.openProposal(ctx, scope, session.KindProposal, key.UserID, target.UserID, price)
}

func checkUnmarried(a, b *domain.Profile) error {
	if a.Married() {
		return apperrors.NewPreconditionError("already_married", "You are already married.", nil)
	}
	if b.Married() {
		return apperrors.NewPreconditionError("target_married", "That user is already married.", nil)
	}
	return nil
}

func (s *Service) openProposal(ctx context.Context, scope Scope, kind session.Kind, from, to string, amount int64) (*Proposal, error) {
	now := s.now()
	sess := &session.Session{
		ID:        uuid.NewString(),
		Kind:      kind,
		Scope:     scope,
		OwnerID:   from,
		TargetID:  to,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTimeout),
	}
	if err := sess.Encode(proposalData{Amount: amount}); err != nil {
		return nil, s.storeErr("proposal.encode", err)
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, s.storeErr("proposal.create", err)
	}

	return &Proposal{
		SessionID:   sess.ID,
		Kind:        kind,
		InitiatorID: from,
		TargetID:    to,
		Amount:      amount,
		Session:     sess,
	}, nil
}

// takeProposal claims a pending request addressed to responder and closes it.
func (s *Service) takeProposal(ctx context.Context, scope Scope, kind session.Kind, responder domain.Key, sessionID string) (*Proposal, error) {
	unlock, err := s.sessions.Lock(ctx, scope, sessionID)
	if err != nil {
		return nil, s.storeErr("proposal.lock", err)
	}
	defer unlock()

	sess, err := s.sessions.Get(ctx, scope, sessionID)
	if err != nil {
		return nil, s.storeErr("proposal.get", err)
	}
	if sess.Kind != kind {
		return nil, apperrors.NewNotFoundError("session_expired", "This interaction has expired.", nil)
	}
	if sess.TargetID != responder.UserID {
		return nil, apperrors.NewPreconditionError("not_addressed_to_you", "This request isn't addressed to you.", nil)
	}

	var data proposalData
	if err := sess.Decode(&data); err != nil {
		return nil, s.storeErr("proposal.decode", err)
	}
	if err := s.sessions.Delete(ctx, scope, sessionID); err != nil {
		return nil, s.storeErr("proposal.close", err)
	}

	return &Proposal{
		SessionID:   sess.ID,
		Kind:        kind,
		InitiatorID: sess.OwnerID,
		TargetID:    sess.TargetID,
		Amount:      data.Amount,
		Session:     sess,
	}, nil
}

// AcceptProposal marries both parties and charges the ring to the proposer.
// Preconditions are re-checked because balances may have moved meanwhile.
func (s *Service) AcceptProposal(ctx context.Context, scope Scope, responder domain.Key, sessionID string) (*Proposal, error) {
	prop, err := s.takeProposal(ctx, scope, session.KindProposal, responder, sessionID)
	if err != nil {
		return nil, err
	}

	proposerKey := domain.Key{UserID: prop.InitiatorID, GuildID: responder.GuildID}
	_, _, err = s.profiles.UpdatePair(ctx, proposerKey, responder, repository.PairOptions{CreateSecond: true},
		func(proposer, partner *domain.Profile) error {
			if err := checkUnmarried(proposer, partner); err != nil {
				return err
			}
			if proposer.Balance < prop.Amount {
				return insufficientFunds(proposer.Balance, prop.Amount)
			}

			now := s.now()
			proposer.Balance -= prop.Amount
			proposer.Stats.TotalSpent += prop.Amount
			proposer.Marriage = &domain.Marriage{PartnerID: partner.UserID, Since: now, Ring: ringName}
			partner.Marriage = &domain.Marriage{PartnerID: proposer.UserID, Since: now, Ring: ringName}
			return nil
		})
	if err != nil {
		return nil, s.storeErr("proposal.accept", err)
	}

	metrics.RecordLedger("marriage", prop.Amount)
	return prop, nil
}

// RejectProposal closes a pending proposal without any ledger change.
func (s *Service) RejectProposal(ctx context.Context, scope Scope, responder domain.Key, sessionID string) (*Proposal, error) {
	return s.takeProposal(ctx, scope, session.KindProposal, responder, sessionID)
}

// Divorce unilaterally dissolves the caller's marriage.
func (s *Service) Divorce(ctx context.Context, key domain.Key) (string, error) {
	self, err := s.profiles.GetOrCreate(ctx, key)
	if err != nil {
		return "", s.storeErr("divorce", err)
	}
	if !self.Married() {
		return "", notMarried()
	}
	partnerID := self.Marriage.PartnerID

	_, _, err = s.profiles.UpdatePair(ctx, key, domain.Key{UserID: partnerID, GuildID: key.GuildID}, repository.PairOptions{},
		func(self, partner *domain.Profile) error {
			if !self.Married() || self.Marriage.PartnerID != partnerID {
				return notMarried()
			}
			self.Marriage = nil
			if partner.Married() && partner.Marriage.PartnerID == self.UserID {
				partner.Marriage = nil
			}
			return nil
		})
	if errors.Is(err, repository.ErrNotFound) {
		// The partner record is gone; clear our side only.
		_, err = s.profiles.Update(ctx, key, func(p *domain.Profile) error {
			p.Marriage = nil
			return nil
		})
	}
	if err != nil {
		return "", s.storeErr("divorce", err)
	}

	return partnerID, nil
}

func notMarried() error {
	return apperrors.NewPreconditionError("not_married", "You are not married.", nil)
}

// RequestKhula asks the partner to consent to a khula. The initiator must be
// able to return half the ring price.
func (s *Service) RequestKhula(ctx context.Context, scope Scope, key domain.Key) (*Proposal, error) {
	guild, err := s.guild(ctx, key.GuildID)
	if err != nil {
		return nil, err
	}
	compensation := ringPrice(guild) / 2

	self, err := s.profiles.GetOrCreate(ctx, key)
	if err != nil {
		return nil, s.storeErr("khula", err)
	}
	if !self.Married() {
		return nil, notMarried()
	}
	if self.Balance < compensation {
		return nil, insufficientFunds(self.Balance, compensation)
	}

	return s.openProposal(ctx, scope, session.KindKhula, key.UserID, self.Marriage.PartnerID, compensation)
}

// AcceptKhula pays the compensation to the partner and dissolves the marriage.
func (s *Service) AcceptKhula(ctx context.Context, scope Scope, responder domain.Key, sessionID string) (*Proposal, error) {
	prop, err := s.takeProposal(ctx, scope, session.KindKhula, responder, sessionID)
	if err != nil {
		return nil, err
	}

	initiatorKey := domain.Key{UserID: prop.InitiatorID, GuildID: responder.GuildID}
	_, _, err = s.profiles.UpdatePair(ctx, initiatorKey, responder, repository.PairOptions{},
		func(initiator, partner *domain.Profile) error {
			if !initiator.Married() || initiator.Marriage.PartnerID != partner.UserID {
				return notMarried()
			}
			if initiator.Balance < prop.Amount {
				return insufficientFunds(initiator.Balance, prop.Amount)
			}

			initiator.Balance -= prop.Amount
			initiator.Stats.TotalSpent += prop.Amount
			partner.Balance += prop.Amount
			partner.Stats.TotalEarned += prop.Amount
			initiator.Marriage = nil
			partner.Marriage = nil
			return nil
		})
	if err != nil {
		return nil, s.storeErr("khula.accept", err)
	}

	metrics.RecordLedger("khula", prop.Amount)
	return prop, nil
}

// RejectKhula closes a pending khula request; the marriage stands.
func (s *Service) RejectKhula(ctx context.Context, scope Scope, responder domain.Key, sessionID string) (*Proposal, error) {
	return s.takeProposal(ctx, scope, session.KindKhula, responder, sessionID)
}
