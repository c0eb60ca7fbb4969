package domain

// Job is an employment position; the empty Job means unemployed.
type Job string

const (
	JobCashier   Job = "cashier"
	JobTeacher   Job = "teacher"
	JobPolice    Job = "police"
	JobDeveloper Job = "developer"
	JobDoctor    Job = "doctor"
)

// SalaryRange is the inclusive payout range of a job.
type SalaryRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// ShopItem is a purchasable one-off item.
type ShopItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// ChannelKind selects which channel binding a setup command writes.
type ChannelKind string

const (
	ChannelEconomy ChannelKind = "economy"
	ChannelGames   ChannelKind = "games"
	ChannelLog     ChannelKind = "log"
)

// Channels binds commands to guild channels. Empty means unrestricted.
type Channels struct {
	Economy string `json:"economy,omitempty"`
	Games   string `json:"games,omitempty"`
	Log     string `json:"log,omitempty"`
}

// EconomySettings are the per-guild ledger parameters. Zero values fall back
// to handler defaults.
type EconomySettings struct {
	InterestRate    float64             `json:"interest_rate,omitempty"`
	MaxLoan         int64               `json:"max_loan,omitempty"`
	DailyReward     int64               `json:"daily_reward,omitempty"`
	ProtectionPrice int64               `json:"protection_price,omitempty"`
	ProtectionHours int64               `json:"protection_hours,omitempty"`
	Jobs            map[Job]SalaryRange `json:"jobs,omitempty"`
	Shop            []ShopItem          `json:"shop,omitempty"`
}

// ItemPrices holds catalog prices referenced by non-shop handlers.
type ItemPrices struct {
	RingPrice int64 `json:"ring_price,omitempty"`
}

// GuildConfig is read-only for every ledger operation except setup.
type GuildConfig struct {
	GuildID   string           `json:"guild_id"`
	Locale    string           `json:"locale,omitempty"`
	Channels  Channels         `json:"channels"`
	Cooldowns map[Action]int64 `json:"cooldowns,omitempty"`
	Economy   EconomySettings  `json:"economy"`
	Items     ItemPrices       `json:"items"`
}

// Channel returns the binding for kind.
func (g *GuildConfig) Channel(kind ChannelKind) string {
	if g == nil {
		return ""
	}

	switch kind {
	case ChannelEconomy:
		return g.Channels.Economy
	case ChannelGames:
		return g.Channels.Games
	case ChannelLog:
		return g.Channels.Log
	default:
		return ""
	}
}

// SetChannel updates the binding for kind and reports whether kind is known.
func (g *GuildConfig) SetChannel(kind ChannelKind, channelID string) bool {
	switch kind {
	case ChannelEconomy:
		g.Channels.Economy = channelID
	case ChannelGames:
		g.Channels.Games = channelID
	case ChannelLog:
		g.Channels.Log = channelID
	default:
		return false
	}
	return true
}
