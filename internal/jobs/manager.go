package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Proton-105/econ-bot/internal/domain"
)

// Manager describes the minimal queue operations needed by the application.
type Manager interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type manager struct {
	client *asynq.Client
	log    *slog.Logger
}

// NewManager builds a Manager backed by an asynq client.
func NewManager(redisOpt asynq.RedisConnOpt, log *slog.Logger) Manager {
	if log == nil {
		log = slog.Default()
	}

	return &manager{
		client: asynq.NewClient(redisOpt),
		log:    log,
	}
}

func (m *manager) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return m.client.EnqueueContext(ctx, task, opts...)
}

func (m *manager) Close() error {
	return m.client.Close()
}

// LoanSource lists loans that still need a reminder.
type LoanSource interface {
	PendingLoans(ctx context.Context) ([]*domain.Profile, error)
}

// Reminders schedules loan reminders as durable delayed tasks.
type Reminders struct {
	queue Manager
	log   *slog.Logger
}

// NewReminders wraps queue.
func NewReminders(queue Manager, log *slog.Logger) *Reminders {
	if log == nil {
		log = slog.Default()
	}
	return &Reminders{queue: queue, log: log}
}

// ScheduleLoanReminder enqueues the reminder for due. Scheduling the same
// loan twice is not an error.
func (r *Reminders) ScheduleLoanReminder(ctx context.Context, key domain.Key, due time.Time) error {
	task, err := NewLoanReminderTask(key, due)
	if err != nil {
		return err
	}

	info, err := r.queue.Enqueue(ctx, task)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict), errors.Is(err, asynq.ErrDuplicateTask):
		return nil
	case err != nil:
		return err
	}

	r.log.DebugContext(ctx, "loan reminder scheduled",
		slog.String("task_id", info.ID),
		slog.String("user_id", key.UserID),
		slog.String("guild_id", key.GuildID),
		slog.Time("due", due),
	)
	return nil
}

// Rearm schedules a reminder for every active, unreminded loan. It runs at
// start so reminders survive a restart that lost the queue. Overdue loans
// are enqueued too and fire immediately.
func (r *Reminders) Rearm(ctx context.Context, loans LoanSource) (int, error) {
	pending, err := loans.PendingLoans(ctx)
	if err != nil {
		return 0, err
	}

	armed := 0
	for _, p := range pending {
		if p.Loan.DueDate == nil || p.Loan.Reminded {
			continue
		}
		if err := r.ScheduleLoanReminder(ctx, p.Key(), *p.Loan.DueDate); err != nil {
			r.log.WarnContext(ctx, "loan reminder not re-armed",
				slog.String("user_id", p.UserID),
				slog.String("guild_id", p.GuildID),
				slog.Any("error", err),
			)
			continue
		}
		armed++
	}

	r.log.InfoContext(ctx, "loan reminders re-armed", slog.Int("count", armed))
	return armed, nil
}
