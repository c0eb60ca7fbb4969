package economy

import (
	"math"
	"time"

	"github.com/Proton-105/econ-bot/internal/domain"
)

const (
	defaultRingPrice       int64   = 5000
	defaultInterestRate    float64 = 0.10
	defaultMaxLoan         int64   = 50000
	defaultDailyReward     int64   = 1000
	defaultProtectionPrice int64   = 2500
	defaultProtectionHours int64   = 24

	loanTerm       = 7 * 24 * time.Hour
	sessionTimeout = 60 * time.Second
)

// DefaultJobs is the salary table used when a guild has none.
var DefaultJobs = map[domain.Job]domain.SalaryRange{
	domain.JobCashier:   {Min: 200, Max: 400},
	domain.JobTeacher:   {Min: 400, Max: 700},
	domain.JobPolice:    {Min: 500, Max: 900},
	domain.JobDeveloper: {Min: 800, Max: 1500},
	domain.JobDoctor:    {Min: 1000, Max: 2000},
}

// DefaultShop is the catalog used when a guild has none.
var DefaultShop = []domain.ShopItem{
	{ID: "fishing_rod", Name: "Fishing Rod", Price: 1500},
	{ID: "laptop", Name: "Laptop", Price: 8000},
	{ID: "car", Name: "Car", Price: 25000},
	{ID: "trophy", Name: "Golden Trophy", Price: 50000},
	{ID: "house", Name: "House", Price: 100000},
}

func ringPrice(g *domain.GuildConfig) int64 {
	if g != nil && g.Items.RingPrice > 0 {
		return g.Items.RingPrice
	}
	return defaultRingPrice
}

// interestBasisPoints keeps loan arithmetic in integers.
func interestBasisPoints(g *domain.GuildConfig) int64 {
	rate := defaultInterestRate
	if g != nil && g.Economy.InterestRate > 0 {
		rate = g.Economy.InterestRate
	}
	return int64(math.Round(rate * 10000))
}

func maxLoan(g *domain.GuildConfig) int64 {
	if g != nil && g.Economy.MaxLoan > 0 {
		return g.Economy.MaxLoan
	}
	return defaultMaxLoan
}

func dailyReward(g *domain.GuildConfig) int64 {
	if g != nil && g.Economy.DailyReward > 0 {
		return g.Economy.DailyReward
	}
	return defaultDailyReward
}

func protectionTerms(g *domain.GuildConfig) (int64, time.Duration) {
	price, hours := defaultProtectionPrice, defaultProtectionHours
	if g != nil {
		if g.Economy.ProtectionPrice > 0 {
			price = g.Economy.ProtectionPrice
		}
		if g.Economy.ProtectionHours > 0 {
			hours = g.Economy.ProtectionHours
		}
	}
	return price, time.Duration(hours) * time.Hour
}

// Jobs returns the salary table in force for a guild.
func Jobs(g *domain.GuildConfig) map[domain.Job]domain.SalaryRange {
	if g != nil && len(g.Economy.Jobs) > 0 {
		return g.Economy.Jobs
	}
	return DefaultJobs
}

// Catalog returns the shop items in force for a guild.
func Catalog(g *domain.GuildConfig) []domain.ShopItem {
	if g != nil && len(g.Economy.Shop) > 0 {
		return g.Economy.Shop
	}
	return DefaultShop
}
