package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command, platform and status",
		},
		[]string{"command", "platform", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	ledgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Total number of committed ledger mutations by operation",
		},
		[]string{"operation"},
	)
	ledgerVolumeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_volume_total",
			Help: "Sum of coins moved by committed ledger mutations",
		},
		[]string{"operation"},
	)
	gameOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_outcomes_total",
			Help: "Gambling results by game and outcome",
		},
		[]string{"game", "outcome"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by kind and severity",
		},
		[]string{"kind", "severity"},
	)
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_sessions",
			Help: "Current number of open interactive sessions",
		},
	)
	remindersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_reminders_total",
			Help: "Loan reminders by result",
		},
		[]string{"result"},
	)
)

// RecordCommand increments command counters and records duration.
func RecordCommand(command, platform, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if platform == "" {
		platform = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, platform, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordLedger tracks a committed mutation and the amount it moved.
func RecordLedger(operation string, amount int64) {
	ledgerOperationsTotal.WithLabelValues(operation).Inc()
	if amount > 0 {
		ledgerVolumeTotal.WithLabelValues(operation).Add(float64(amount))
	}
}

// RecordGame tracks a settled game. Outcome is win, lose or tie.
func RecordGame(game, outcome string) {
	gameOutcomesTotal.WithLabelValues(game, outcome).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(kind, severity string) {
	if kind == "" {
		kind = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(kind, severity).Inc()
}

// RecordReminder counts loan reminder deliveries.
func RecordReminder(result string) {
	remindersTotal.WithLabelValues(result).Inc()
}

// SetActiveSessions updates the open session gauge.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// Counter is the part of the session store the collector polls.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// SessionCollector periodically publishes the number of open sessions.
type SessionCollector struct {
	sessions Counter
	interval time.Duration
}

// NewSessionCollector builds a collector that polls sessions every interval.
func NewSessionCollector(sessions Counter, interval time.Duration) *SessionCollector {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &SessionCollector{sessions: sessions, interval: interval}
}

// Run polls until ctx is cancelled.
func (c *SessionCollector) Run(ctx context.Context) {
	if c == nil || c.sessions == nil {
		return
	}

	for {
		if count, err := c.sessions.Count(ctx); err == nil {
			SetActiveSessions(count)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interval):
		}
	}
}
