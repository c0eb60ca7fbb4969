package economy

import (
	"fmt"
	"time"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
)

// GameCooldown gates every gambling command and is not guild configurable.
const GameCooldown = 10 * time.Second

// defaultCooldowns apply when a guild has no override for the action.
var defaultCooldowns = map[domain.Action]time.Duration{
	domain.ActionDaily:  24 * time.Hour,
	domain.ActionSalary: 24 * time.Hour,
	domain.ActionCrime:  30 * time.Minute,
	domain.ActionRob:    time.Hour,
}

var gameActions = map[domain.Action]struct{}{
	domain.ActionCoinflip:  {},
	domain.ActionDice:      {},
	domain.ActionSlots:     {},
	domain.ActionRPS:       {},
	domain.ActionBlackjack: {},
}

// CooldownResult is the outcome of CheckCooldown.
type CooldownResult struct {
	Allowed   bool
	Remaining time.Duration
}

// CheckCooldown compares now against the stamped last action plus d. It has
// no side effects; callers stamp after the action completes.
func CheckCooldown(p *domain.Profile, action domain.Action, d time.Duration, now time.Time) CooldownResult {
	remainingMs := p.LastAction(action) + d.Milliseconds() - now.UnixMilli()
	if remainingMs <= 0 {
		return CooldownResult{Allowed: true}
	}
	return CooldownResult{Remaining: time.Duration(remainingMs) * time.Millisecond}
}

// CooldownFor resolves the duration for action: games are fixed, everything
// else prefers the guild override and falls back to the action default.
func CooldownFor(guild *domain.GuildConfig, action domain.Action) time.Duration {
	if _, ok := gameActions[action]; ok {
		return GameCooldown
	}

	if guild != nil {
		if ms, ok := guild.Cooldowns[action]; ok && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}

	return defaultCooldowns[action]
}

func cooldownErr(action domain.Action, remaining time.Duration) error {
	wait := FormatDuration(remaining)
	return apperrors.NewPreconditionError("cooldown",
		fmt.Sprintf("You can use %s again in %s.", action, wait),
		map[string]any{"action": string(action), "wait": wait})
}

func (s *Service) gate(p *domain.Profile, guild *domain.GuildConfig, action domain.Action, now time.Time) error {
	res := CheckCooldown(p, action, CooldownFor(guild, action), now)
	if !res.Allowed {
		return cooldownErr(action, res.Remaining)
	}
	return nil
}

// FormatDuration renders d as "1h 2m 3s", rounding up to whole seconds.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}

	secs := int64((d + time.Second - 1) / time.Second)
	h, m, sec := secs/3600, (secs%3600)/60, secs%60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, sec)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, sec)
	default:
		return fmt.Sprintf("%ds", sec)
	}
}
