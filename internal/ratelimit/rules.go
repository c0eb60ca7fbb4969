package ratelimit

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/Proton-105/econ-bot/pkg/config"
)

// Rule is a parsed sliding-window limit.
type Rule struct {
	Limit  int
	Window time.Duration
}

type ruleSet struct {
	enabled   bool
	perUser   Rule
	commands  map[string]Rule
	whitelist map[string]struct{}
}

// Rules holds the configured limits. Update swaps them atomically so a
// config reload takes effect without restarting the bot.
type Rules struct {
	current atomic.Pointer[ruleSet]
}

// NewRules constructs rate limiting rules from configuration settings.
func NewRules(cfg config.RateLimitConfig) *Rules {
	r := &Rules{}
	r.Update(cfg)
	return r
}

// Update replaces the rule set. Rules with an unparsable or empty window
// are dropped.
func (r *Rules) Update(cfg config.RateLimitConfig) {
	set := &ruleSet{
		enabled:   cfg.Enabled,
		commands:  make(map[string]Rule, len(cfg.Commands)),
		whitelist: make(map[string]struct{}, len(cfg.Whitelist)),
	}

	if rule, ok := parseRule(cfg.PerUser); ok {
		set.perUser = rule
	}
	for name, raw := range cfg.Commands {
		if rule, ok := parseRule(raw); ok {
			set.commands[strings.ToLower(name)] = rule
		}
	}
	for _, id := range cfg.Whitelist {
		set.whitelist[id] = struct{}{}
	}

	r.current.Store(set)
}

// Enabled reports whether limiting is switched on.
func (r *Rules) Enabled() bool {
	return r.current.Load().enabled
}

// IsWhitelisted returns true if the user bypasses rate limits.
func (r *Rules) IsWhitelisted(userID string) bool {
	_, ok := r.current.Load().whitelist[userID]
	return ok
}

// PerUser returns the limit applied to every event of a user.
func (r *Rules) PerUser() (Rule, bool) {
	rule := r.current.Load().perUser
	return rule, rule.Window > 0
}

// Command returns the extra limit for command, if one is configured.
func (r *Rules) Command(command string) (Rule, bool) {
	rule, ok := r.current.Load().commands[strings.ToLower(command)]
	return rule, ok
}

func parseRule(rule config.RateLimitRule) (Rule, bool) {
	if rule.Window == "" {
		return Rule{}, false
	}
	window, err := time.ParseDuration(rule.Window)
	if err != nil || window <= 0 {
		return Rule{}, false
	}
	return Rule{Limit: rule.Limit, Window: window}, true
}
