package economy

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/internal/session"
	"github.com/Proton-105/econ-bot/pkg/metrics"
)

const dealerStandsOn = 17

// Card is a playing card; Rank runs from 1 (ace) to 13 (king).
type Card struct {
	Rank int    `json:"rank"`
	Suit string `json:"suit"`
}

var suits = []string{"♠", "♥", "♦", "♣"}

// String renders the card as rank plus suit.
func (c Card) String() string {
	names := map[int]string{1: "A", 11: "J", 12: "Q", 13: "K"}
	if n, ok := names[c.Rank]; ok {
		return n + c.Suit
	}
	return strconv.Itoa(c.Rank) + c.Suit
}

// HandValue scores a hand. Face cards count 10; each ace counts 11 unless
// that would bust the hand.
func HandValue(cards []Card) int {
	total, aces := 0, 0
	for _, c := range cards {
		switch {
		case c.Rank == 1:
			aces++
			total++
		case c.Rank >= 10:
			total += 10
		default:
			total += c.Rank
		}
	}
	for ; aces > 0 && total+10 <= 21; aces-- {
		total += 10
	}
	return total
}

// BlackjackHand is the session payload of an open round.
type BlackjackHand struct {
	UserID string `json:"user_id"`
	Bet    int64  `json:"bet"`
	Deck   []Card `json:"deck"`
	Player []Card `json:"player"`
	Dealer []Card `json:"dealer"`
}

func (h *BlackjackHand) draw() Card {
	c := h.Deck[0]
	h.Deck = h.Deck[1:]
	return c
}

// BlackjackState is what the presentation layer renders. While the round is
// open only the dealer's first card is meaningful.
type BlackjackState struct {
	SessionID   string
	Bet         int64
	Player      []Card
	Dealer      []Card
	PlayerValue int
	DealerValue int
	Finished    bool
	Outcome     Outcome
	Payout      int64
	Profile     *domain.Profile
	ExpiresAt   time.Time
}

func (s *Service) newDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, suit := range suits {
		for rank := 1; rank <= 13; rank++ {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	for i := len(deck) - 1; i > 0; i-- {
		j := int(s.rnd.Float64() * float64(i+1))
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// StartBlackjack escrows the bet and deals a round. A natural 21 settles
// immediately; otherwise the round stays open for hit or stand until the
// session times out, which forfeits the stake.
func (s *Service) StartBlackjack(ctx context.Context, scope Scope, key domain.Key, raw string) (*BlackjackState, error) {
	amt, err := ParseAmount(raw)
	if err != nil {
		return nil, err
	}
	if !amt.All && amt.Value < MinBet {
		return nil, betTooSmall()
	}

	var bet int64
	if _, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		now := s.now()
		if err := s.gate(p, nil, domain.ActionBlackjack, now); err != nil {
			return err
		}
		bet = amt.Resolve(p.Balance)
		if amt.All && bet < MinBet {
			return betTooSmall()
		}
		if bet > p.Balance {
			return insufficientFunds(p.Balance, bet)
		}
		p.Balance -= bet
		p.Stats.GamesPlayed++
		p.Stamp(domain.ActionBlackjack, now)
		return nil
	}); err != nil {
		return nil, s.storeErr("blackjack.deal", err)
	}

	hand := &BlackjackHand{UserID: key.UserID, Bet: bet, Deck: s.newDeck()}
	hand.Player = append(hand.Player, hand.draw())
	hand.Dealer = append(hand.Dealer, hand.draw())
	hand.Player = append(hand.Player, hand.draw())
	hand.Dealer = append(hand.Dealer, hand.draw())

	if HandValue(hand.Player) == 21 {
		return s.settleBlackjack(ctx, scope, key, "", hand)
	}

	now := s.now()
	sess := &session.Session{
		ID:        uuid.NewString(),
		Kind:      session.KindBlackjack,
		Scope:     scope,
		OwnerID:   key.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTimeout),
	}
	if err := sess.Encode(hand); err == nil {
		err = s.sessions.Create(ctx, sess)
	}
	if err != nil {
		s.refundEscrow(ctx, key, bet)
		return nil, s.storeErr("blackjack.session", err)
	}

	return openState(sess, hand), nil
}

// refundEscrow compensates a deal whose session could not be opened.
func (s *Service) refundEscrow(ctx context.Context, key domain.Key, bet int64) {
	_, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		p.Balance += bet
		p.Stats.GamesPlayed--
		return nil
	})
	if err != nil {
		s.log.Error("blackjack escrow refund failed",
			slog.String("user_id", key.UserID),
			slog.String("guild_id", key.GuildID),
			slog.Int64("bet", bet),
			slog.Any("error", err),
		)
	}
}

// Hit draws a card for the player; a bust settles the round.
func (s *Service) Hit(ctx context.Context, scope Scope, key domain.Key, sessionID string) (*BlackjackState, error) {
	return s.withHand(ctx, scope, key, sessionID, func(sess *session.Session, hand *BlackjackHand) (*BlackjackState, error) {
		hand.Player = append(hand.Player, hand.draw())
		if HandValue(hand.Player) > 21 {
			return s.settleBlackjack(ctx, scope, key, sess.ID, hand)
		}

		if err := sess.Encode(hand); err != nil {
			return nil, s.storeErr("blackjack.encode", err)
		}
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, s.storeErr("blackjack.save", err)
		}
		return openState(sess, hand), nil
	})
}

// Stand lets the dealer play out and settles the round.
func (s *Service) Stand(ctx context.Context, scope Scope, key domain.Key, sessionID string) (*BlackjackState, error) {
	return s.withHand(ctx, scope, key, sessionID, func(sess *session.Session, hand *BlackjackHand) (*BlackjackState, error) {
		for HandValue(hand.Dealer) < dealerStandsOn {
			hand.Dealer = append(hand.Dealer, hand.draw())
		}
		return s.settleBlackjack(ctx, scope, key, sess.ID, hand)
	})
}

func (s *Service) withHand(
	ctx context.Context,
	scope Scope,
	key domain.Key,
	sessionID string,
	fn func(*session.Session, *BlackjackHand) (*BlackjackState, error),
) (*BlackjackState, error) {
	unlock, err := s.sessions.Lock(ctx, scope, sessionID)
	if err != nil {
		return nil, s.storeErr("blackjack.lock", err)
	}
	defer unlock()

	sess, err := s.sessions.Get(ctx, scope, sessionID)
	if err != nil {
		return nil, s.storeErr("blackjack.get", err)
	}
	if sess.Kind != session.KindBlackjack {
		return nil, apperrors.NewNotFoundError("session_expired", "This interaction has expired.", nil)
	}
	if sess.OwnerID != key.UserID {
		return nil, apperrors.NewPreconditionError("not_your_game", "This isn't your game.", nil)
	}

	var hand BlackjackHand
	if err := sess.Decode(&hand); err != nil {
		return nil, s.storeErr("blackjack.decode", err)
	}

	return fn(sess, &hand)
}

func blackjackOutcome(hand *BlackjackHand) Outcome {
	player, dealer := HandValue(hand.Player), HandValue(hand.Dealer)
	switch {
	case player > 21:
		return OutcomeLose
	case dealer > 21 || player > dealer:
		return OutcomeWin
	case player == dealer:
		return OutcomeTie
	default:
		return OutcomeLose
	}
}

// settleBlackjack closes the session before crediting so a round can never
// pay out twice.
func (s *Service) settleBlackjack(ctx context.Context, scope Scope, key domain.Key, sessionID string, hand *BlackjackHand) (*BlackjackState, error) {
	outcome := blackjackOutcome(hand)

	if sessionID != "" {
		if err := s.sessions.Delete(ctx, scope, sessionID); err != nil {
			return nil, s.storeErr("blackjack.close", err)
		}
	}

	var payout int64
	switch outcome {
	case OutcomeWin:
		payout = hand.Bet * 2
	case OutcomeTie:
		payout = hand.Bet
	}

	p, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		p.Balance += payout
		switch outcome {
		case OutcomeWin:
			p.Stats.GamesWon++
			p.Stats.TotalEarned += hand.Bet
		case OutcomeLose:
			p.Stats.TotalLost += hand.Bet
		}
		return nil
	})
	if err != nil {
		// The session is already closed, so the payout can only be
		// reconciled by hand from this line.
		s.log.Error("blackjack payout lost",
			slog.String("user_id", key.UserID),
			slog.String("guild_id", key.GuildID),
			slog.Int64("bet", hand.Bet),
			slog.Int64("payout", payout),
			slog.String("session_id", sessionID),
			slog.Any("error", err),
		)
		return nil, s.storeErr("blackjack.settle", err)
	}

	metrics.RecordGame(string(domain.ActionBlackjack), string(outcome))

	return &BlackjackState{
		SessionID:   sessionID,
		Bet:         hand.Bet,
		Player:      hand.Player,
		Dealer:      hand.Dealer,
		PlayerValue: HandValue(hand.Player),
		DealerValue: HandValue(hand.Dealer),
		Finished:    true,
		Outcome:     outcome,
		Payout:      payout,
		Profile:     p,
	}, nil
}

func openState(sess *session.Session, hand *BlackjackHand) *BlackjackState {
	return &BlackjackState{
		SessionID:   sess.ID,
		Bet:         hand.Bet,
		Player:      hand.Player,
		Dealer:      hand.Dealer[:1],
		PlayerValue: HandValue(hand.Player),
		DealerValue: HandValue(hand.Dealer[:1]),
		ExpiresAt:   sess.ExpiresAt,
	}
}

// ForfeitExpired is a session expiry hook: an abandoned blackjack round keeps
// the escrowed stake and records it as lost.
func (s *Service) ForfeitExpired(ctx context.Context, sess *session.Session) {
	if sess.Kind != session.KindBlackjack {
		return
	}

	var hand BlackjackHand
	if err := sess.Decode(&hand); err != nil {
		s.log.Error("undecodable blackjack session", slog.String("session_id", sess.ID), slog.Any("error", err))
		return
	}

	key := domain.Key{UserID: sess.OwnerID, GuildID: sess.Scope.GuildID}
	if _, err := s.profiles.Update(ctx, key, func(p *domain.Profile) error {
		p.Stats.TotalLost += hand.Bet
		return nil
	}); err != nil {
		s.log.Error("failed to record forfeited stake", slog.String("session_id", sess.ID), slog.Any("error", err))
		return
	}

	metrics.RecordGame(string(domain.ActionBlackjack), "forfeit")
}
