// Package session stores short-lived interactive sessions: blackjack rounds,
// marriage proposals and khula requests. A session is addressed by the
// channel it was opened in plus its ID and is closed exactly once, either by
// the handler that settles it or by the cleaner when it expires.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the session never existed, expired or was closed.
	ErrNotFound = errors.New("session not found")
	// ErrLocked indicates a concurrent action already holds the session.
	ErrLocked = errors.New("session is locked, try again later")
)

// Kind tells the handlers how to interpret Data.
type Kind string

const (
	KindBlackjack Kind = "blackjack"
	KindProposal  Kind = "proposal"
	KindKhula     Kind = "khula"
)

// Scope is the channel a session lives in.
type Scope struct {
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
}

// Session is a pending interaction.
type Session struct {
	ID        string          `json:"id"`
	Kind      Kind            `json:"kind"`
	Scope     Scope           `json:"scope"`
	OwnerID   string          `json:"owner_id"`
	TargetID  string          `json:"target_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Expired reports whether the session timed out at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Encode stores v as the session payload.
func (s *Session) Encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.Data = data
	return nil
}

// Decode reads the session payload into v.
func (s *Session) Decode(v any) error {
	if len(s.Data) == 0 {
		return nil
	}
	return json.Unmarshal(s.Data, v)
}

// Store persists sessions.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, s *Session) error
	// Get returns a live session; expired sessions yield ErrNotFound.
	Get(ctx context.Context, scope Scope, id string) (*Session, error)
	// Save overwrites the payload of an existing session without extending it.
	Save(ctx context.Context, s *Session) error
	// Delete closes a session and returns ErrNotFound if it was already gone.
	Delete(ctx context.Context, scope Scope, id string) error
	// Lock serializes actions on one session.
	Lock(ctx context.Context, scope Scope, id string) (func(), error)
	// List returns every stored session, expired ones included.
	List(ctx context.Context) ([]*Session, error)
}
