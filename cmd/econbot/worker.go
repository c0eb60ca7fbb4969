package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Proton-105/econ-bot/internal/bot"
	"github.com/Proton-105/econ-bot/internal/economy"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/internal/gateway/discord"
	"github.com/Proton-105/econ-bot/internal/gateway/telegram"
	"github.com/Proton-105/econ-bot/internal/i18n"
	"github.com/Proton-105/econ-bot/internal/jobs"
	jobhandlers "github.com/Proton-105/econ-bot/internal/jobs/handlers"
	pkgredis "github.com/Proton-105/econ-bot/pkg/redis"
)

func newWorkerCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Process loan reminders and the overdue sweep",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.stop()

			ctx, cancel := signalContext()
			defer cancel()

			if err := a.openDB(ctx); err != nil {
				return err
			}
			if err := a.openRedis(ctx); err != nil {
				return err
			}
			catalog, err := a.catalog()
			if err != nil {
				return err
			}

			queue := jobs.NewManager(pkgredis.AsynqOpt(a.cfg.Redis), a.log)
			a.shutdown.Closer("job queue", queue)
			svc, _ := a.economy(economy.WithReminder(jobs.NewReminders(queue, a.log)))

			notifiers, err := a.senders()
			if err != nil {
				return err
			}

			if err := a.startWorker(ctx, svc, notifiers, catalog); err != nil {
				return err
			}
			a.log.Info("econbot worker running", slog.Int("concurrency", a.cfg.Jobs.Concurrency))

			<-ctx.Done()
			a.log.Info("econbot worker shutting down")
			return nil
		},
	}
}

// senders builds REST-only gateway clients for direct messages. The worker
// never opens a gateway connection.
func (a *app) senders() (bot.Notifiers, error) {
	var n bot.Notifiers

	if a.cfg.Discord.Enabled {
		gw, err := discord.New(a.cfg.Discord, nil, a.log)
		if err != nil {
			return n, err
		}
		n.Discord = bot.Guard(discord.NewNotifier(gw.Session(), 1), apperrors.NewCircuitBreaker(apperrors.DefaultBreakerSettings))
	}
	if a.cfg.Telegram.Enabled {
		gw, err := telegram.New(a.cfg.Telegram, nil, nil, a.log)
		if err != nil {
			return n, err
		}
		n.Telegram = bot.Guard(telegram.NewNotifier(gw.Bot(), 25), apperrors.NewCircuitBreaker(apperrors.DefaultBreakerSettings))
	}
	return n, nil
}

// startWorker runs the asynq worker and the sweep scheduler, and re-arms
// reminders for loans taken while no worker was running.
func (a *app) startWorker(ctx context.Context, svc *economy.Service, notifier bot.Notifier, catalog *i18n.Manager) error {
	if err := jobs.ValidateCron(a.cfg.Jobs.SweepCron); err != nil {
		return err
	}
	opt := pkgredis.AsynqOpt(a.cfg.Redis)

	worker := jobs.NewWorker(opt, a.cfg.Jobs.Concurrency, a.log)
	worker.RegisterHandler(jobs.TaskTypeLoanReminder, jobhandlers.NewLoanReminderHandler(svc, notifier, catalog, a.log))
	worker.RegisterHandler(jobs.TaskTypeLoanSweep, jobhandlers.NewLoanSweepHandler(svc, notifier, catalog, a.log))

	scheduler := jobs.NewScheduler(opt, a.cfg.Jobs.SweepCron, a.log)
	if err := scheduler.RegisterTasks(); err != nil {
		return err
	}

	queue := jobs.NewManager(opt, a.log)
	a.shutdown.Closer("rearm queue", queue)
	if _, err := jobs.NewReminders(queue, a.log).Rearm(ctx, svc); err != nil {
		a.log.Warn("loan reminders not re-armed", slog.Any("error", err))
	}

	if err := worker.Start(); err != nil {
		return fmt.Errorf("start jobs worker: %w", err)
	}
	if err := scheduler.Run(); err != nil {
		worker.Shutdown()
		return err
	}

	a.shutdown.Register("jobs worker", func(context.Context) error {
		worker.Shutdown()
		return nil
	})
	a.shutdown.Register("scheduler", func(context.Context) error {
		scheduler.Shutdown()
		return nil
	})
	return nil
}
