package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type hook struct {
	name string
	fn   func(context.Context) error
}

// Shutdown runs shutdown hooks in reverse registration order, so components
// stop before the dependencies they were started after. Inbound gateways
// should be registered last and stop first.
type Shutdown struct {
	mu    sync.Mutex
	hooks []hook
	done  bool
	log   *slog.Logger
}

// NewShutdown constructs a new Shutdown coordinator.
func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{log: log}
}

// Register adds a named shutdown hook.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, hook{name: name, fn: fn})
}

// Closer registers a hook around a Close method.
func (s *Shutdown) Closer(name string, c interface{ Close() error }) {
	if c == nil {
		return
	}
	s.Register(name, func(context.Context) error { return c.Close() })
}

// Execute runs the registered hooks once. A failing hook does not stop the
// hooks after it; a hook still running when ctx expires is abandoned.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return nil
	}
	s.done = true
	hooks := append([]hook(nil), s.hooks...)
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("hook_count", len(hooks)))

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := s.run(ctx, hooks[i]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hooks[i].name, err))
		}
	}

	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))
	return errors.Join(errs...)
}

func (s *Shutdown) run(ctx context.Context, h hook) error {
	if err := ctx.Err(); err != nil {
		s.log.Warn("shutdown hook skipped", slog.String("hook", h.name), slog.Any("error", err))
		return err
	}

	s.log.Info("running shutdown hook", slog.String("hook", h.name))

	done := make(chan error, 1)
	go func() { done <- h.fn(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			s.log.Error("shutdown hook failed", slog.String("hook", h.name), slog.Any("error", err))
			return err
		}
		s.log.Info("shutdown hook completed", slog.String("hook", h.name))
		return nil
	case <-ctx.Done():
		s.log.Error("shutdown hook timed out", slog.String("hook", h.name))
		return ctx.Err()
	}
}
