// Package domain holds the ledger records shared by the store, the economy
// service and the presentation layer.
package domain

import "time"

// Key identifies a profile. Profiles are scoped per guild, so the same user
// has an independent ledger in every guild.
type Key struct {
	UserID  string `json:"user_id"`
	GuildID string `json:"guild_id"`
}

// Action names a cooldown-gated operation.
type Action string

const (
	ActionDaily     Action = "daily"
	ActionSalary    Action = "salary"
	ActionCrime     Action = "crime"
	ActionRob       Action = "rob"
	ActionCoinflip  Action = "coinflip"
	ActionDice      Action = "dice"
	ActionSlots     Action = "slots"
	ActionRPS       Action = "rps"
	ActionBlackjack Action = "blackjack"
)

// Profile is the per-(user, guild) economy record.
type Profile struct {
	UserID     string           `json:"user_id"`
	GuildID    string           `json:"guild_id"`
	Balance    int64            `json:"balance"`
	Bank       int64            `json:"bank"`
	Job        Job              `json:"job,omitempty"`
	Cooldowns  map[Action]int64 `json:"cooldowns,omitempty"`
	Marriage   *Marriage        `json:"marriage,omitempty"`
	Protection Protection       `json:"protection"`
	Stats      Stats            `json:"stats"`
	Loan       Loan             `json:"loan"`
	Items      []Item           `json:"items,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// Version is maintained by the store and used for compare-and-set saves.
	Version int64 `json:"-"`
}

// Marriage is symmetric: both partners carry a Marriage pointing at each other.
type Marriage struct {
	PartnerID string    `json:"partner_id"`
	Since     time.Time `json:"since"`
	Ring      string    `json:"ring"`
}

// Protection makes a profile immune to robbery until ExpiresAt.
type Protection struct {
	Active    bool      `json:"active"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Stats are informational counters; they are never reconciled against balances.
type Stats struct {
	GamesPlayed     int64 `json:"games_played"`
	GamesWon        int64 `json:"games_won"`
	TotalEarned     int64 `json:"total_earned"`
	TotalSpent      int64 `json:"total_spent"`
	CrimesCommitted int64 `json:"crimes_committed"`
	TotalStolen     int64 `json:"total_stolen"`
	TotalLost       int64 `json:"total_lost"`
	TotalSalary     int64 `json:"total_salary"`
}

// Loan tracks the single active loan of a profile. Amount is what remains owed.
type Loan struct {
	Amount   int64      `json:"amount"`
	Issued   int64      `json:"issued"`
	DueDate  *time.Time `json:"due_date,omitempty"`
	Payments []Payment  `json:"payments,omitempty"`
	Reminded bool       `json:"reminded,omitempty"`
}

// Payment is one repayment against a loan.
type Payment struct {
	Amount int64     `json:"amount"`
	Date   time.Time `json:"date"`
}

// Item is a purchased inventory entry.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// NewProfile returns an empty profile for key.
func NewProfile(key Key, now time.Time) *Profile {
	return &Profile{
		UserID:    key.UserID,
		GuildID:   key.GuildID,
		Cooldowns: make(map[Action]int64),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Key returns the compound key of the profile.
func (p *Profile) Key() Key {
	return Key{UserID: p.UserID, GuildID: p.GuildID}
}

// Married reports whether the profile has a partner.
func (p *Profile) Married() bool {
	return p.Marriage != nil && p.Marriage.PartnerID != ""
}

// HasActiveLoan reports whether anything is still owed.
func (p *Profile) HasActiveLoan() bool {
	return p.Loan.Amount > 0
}

// Protected reports whether robbery protection is in force at now.
func (p *Profile) Protected(now time.Time) bool {
	return p.Protection.Active && p.Protection.ExpiresAt.After(now)
}

// NetWorth is wallet plus bank minus outstanding loan.
func (p *Profile) NetWorth() int64 {
	return p.Balance + p.Bank - p.Loan.Amount
}

// LastAction returns the stamped time of action in epoch millis, 0 when never stamped.
func (p *Profile) LastAction(action Action) int64 {
	if p.Cooldowns == nil {
		return 0
	}
	return p.Cooldowns[action]
}

// Stamp records now as the last execution of action.
func (p *Profile) Stamp(action Action, now time.Time) {
	if p.Cooldowns == nil {
		p.Cooldowns = make(map[Action]int64)
	}
	p.Cooldowns[action] = now.UnixMilli()
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}

	c := *p
	if p.Cooldowns != nil {
		c.Cooldowns = make(map[Action]int64, len(p.Cooldowns))
		for k, v := range p.Cooldowns {
			c.Cooldowns[k] = v
		}
	}
	if p.Marriage != nil {
		m := *p.Marriage
		c.Marriage = &m
	}
	if p.Loan.DueDate != nil {
		d := *p.Loan.DueDate
		c.Loan.DueDate = &d
	}
	c.Loan.Payments = append([]Payment(nil), p.Loan.Payments...)
	c.Items = append([]Item(nil), p.Items...)

	return &c
}
