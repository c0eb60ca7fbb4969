package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// DefaultSweepCron runs the overdue loan scan every 15 minutes.
const DefaultSweepCron = "*/15 * * * *"

type Scheduler interface {
	RegisterTasks() error
	Run() error
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	sweepCron      string
	log            *slog.Logger
}

// NewScheduler builds a scheduler for the periodic loan sweep. An empty
// spec selects DefaultSweepCron.
func NewScheduler(redisOpt asynq.RedisConnOpt, sweepCron string, log *slog.Logger) Scheduler {
	if sweepCron == "" {
		sweepCron = DefaultSweepCron
	}
	if log == nil {
		log = slog.Default()
	}

	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		sweepCron:      sweepCron,
		log:            log,
	}
}

// ValidateCron reports whether spec is a standard five-field cron expression.
func ValidateCron(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

func (s *scheduler) RegisterTasks() error {
	if err := ValidateCron(s.sweepCron); err != nil {
		return err
	}

	if _, err := s.asynqScheduler.Register(s.sweepCron, NewLoanSweepTask()); err != nil {
		return err
	}

	s.log.InfoContext(context.Background(), "scheduler: registered loan sweep", slog.String("cron", s.sweepCron))
	return nil
}

// Run starts the scheduler in the background; Shutdown stops it.
func (s *scheduler) Run() error {
	s.log.InfoContext(context.Background(), "scheduler: starting")
	if err := s.asynqScheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	return nil
}

func (s *scheduler) Shutdown() {
	s.log.InfoContext(context.Background(), "scheduler: shutting down")
	s.asynqScheduler.Shutdown()
}
