package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/Proton-105/econ-bot/internal/health"
)

// ErrDraining is reported by readiness once shutdown has begun.
var ErrDraining = errors.New("shutting down")

// ErrUnhealthy is reported by readiness when a component check fails.
var ErrUnhealthy = errors.New("component unhealthy")

// HealthChecker exposes liveness and readiness probes.
type HealthChecker interface {
	Liveness(ctx context.Context) error
	Readiness(ctx context.Context) (map[string]string, error)
}

// Probes answers the ops probes from the component checker and the
// shutdown state.
type Probes struct {
	checker  *health.Checker
	draining atomic.Bool
	log      *slog.Logger
}

var _ HealthChecker = (*Probes)(nil)

// NewProbes creates a new Probes instance.
func NewProbes(checker *health.Checker, log *slog.Logger) *Probes {
	if log == nil {
		log = slog.Default()
	}
	return &Probes{checker: checker, log: log}
}

// Drain marks the process as shutting down so load balancers stop routing to it.
func (p *Probes) Drain() {
	if p.draining.CompareAndSwap(false, true) {
		p.log.Info("readiness probe draining")
	}
}

// Liveness succeeds while the process can serve requests at all.
func (p *Probes) Liveness(ctx context.Context) error {
	p.log.Debug("liveness probe called")
	return nil
}

// Readiness fails while draining or when any component check fails.
func (p *Probes) Readiness(ctx context.Context) (map[string]string, error) {
	if p.draining.Load() {
		return nil, ErrDraining
	}
	if p.checker == nil {
		return nil, nil
	}

	results, ok := p.checker.Check(ctx)
	if !ok {
		return results, ErrUnhealthy
	}
	return results, nil
}
