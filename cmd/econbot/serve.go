package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Proton-105/econ-bot/internal/bot"
	"github.com/Proton-105/econ-bot/internal/economy"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/internal/gateway/discord"
	"github.com/Proton-105/econ-bot/internal/gateway/telegram"
	"github.com/Proton-105/econ-bot/internal/health"
	"github.com/Proton-105/econ-bot/internal/idempotency"
	"github.com/Proton-105/econ-bot/internal/jobs"
	"github.com/Proton-105/econ-bot/internal/lifecycle"
	"github.com/Proton-105/econ-bot/internal/middleware"
	"github.com/Proton-105/econ-bot/internal/ratelimit"
	"github.com/Proton-105/econ-bot/internal/session"
	"github.com/Proton-105/econ-bot/internal/user"
	"github.com/Proton-105/econ-bot/pkg/config"
	"github.com/Proton-105/econ-bot/pkg/graceful"
	"github.com/Proton-105/econ-bot/pkg/logger"
	"github.com/Proton-105/econ-bot/pkg/metrics"
	pkgredis "github.com/Proton-105/econ-bot/pkg/redis"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var withWorker bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect the chat gateways and serve commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.stop()

			ctx, cancel := signalContext()
			defer cancel()

			return a.serve(ctx, withWorker)
		},
	}
	cmd.Flags().BoolVar(&withWorker, "with-worker", false, "also run the background worker in this process")
	return cmd
}

func (a *app) serve(ctx context.Context, withWorker bool) error {
	cfg := a.cfg
	if !cfg.Discord.Enabled && !cfg.Telegram.Enabled {
		return errors.New("no gateway enabled")
	}
	withWorker = withWorker || cfg.Jobs.Enabled

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

	queue := jobs.NewManager(pkgredis.AsynqOpt(cfg.Redis), a.log)
	a.shutdown.Closer("job queue", queue)
	reminders := jobs.NewReminders(queue, a.log)

	svc, sessions := a.economy(economy.WithReminder(reminders))
	raw := a.redis.Raw()

	fallback := ratelimit.NewMemoryLimiter()
	limiter := ratelimit.NewAdaptiveLimiter(ratelimit.NewRedisLimiter(raw, a.log), fallback, a.log)
	rules := ratelimit.NewRules(cfg.RateLimit)
	config.Watch(a.viper, a.log, func(next *config.Config) {
		logger.SetLevel(next.Logger.Level)
		rules.Update(next.RateLimit)
	})

	b := bot.New(bot.Deps{
		Economy:     svc,
		Catalog:     catalog,
		Errors:      apperrors.NewHandler(a.log, cfg.Sentry.Enabled),
		Idempotency: idempotency.NewManager(idempotency.NewRedisStore(raw, a.log), a.log),
		RateLimit:   middleware.NewRateLimitMiddleware(limiter, rules, a.log),
		Log:         a.log,
	})

	checker := health.NewChecker(a.log)
	checker.AddCheck("database", health.NewDBChecker(a.db))
	checker.AddCheck("redis", health.NewRedisChecker(raw))
	probes := lifecycle.NewProbes(checker, a.log)

	g, gctx := errgroup.WithContext(ctx)

	var notifiers bot.Notifiers
	if cfg.Discord.Enabled {
		gw, err := discord.New(cfg.Discord, b, a.log)
		if err != nil {
			return err
		}
		if err := gw.Start(gctx); err != nil {
			return err
		}
		a.shutdown.Closer("discord", gw)
		checker.AddCheck("discord", gw)
		notifiers.Discord = bot.Guard(discord.NewNotifier(gw.Session(), 1), apperrors.NewCircuitBreaker(apperrors.DefaultBreakerSettings))
	}
	if cfg.Telegram.Enabled {
		directory := user.NewDirectory(pkgredis.NewMetricsClient(a.redis), a.log)
		gw, err := telegram.New(cfg.Telegram, b, directory, a.log)
		if err != nil {
			return err
		}
		g.Go(func() error {
			gw.Start(gctx)
			return nil
		})
		a.shutdown.Register("telegram", func(context.Context) error {
			gw.Stop()
			return nil
		})
		checker.AddCheck("telegram", gw)
		notifiers.Telegram = bot.Guard(telegram.NewNotifier(gw.Bot(), 25), apperrors.NewCircuitBreaker(apperrors.DefaultBreakerSettings))
	}

	cleaner := session.NewCleaner(sessions, a.log, cfg.Sessions.CleanupInterval, svc.ForfeitExpired)
	g.Go(func() error {
		cleaner.Run(gctx)
		return nil
	})
	g.Go(func() error {
		metrics.NewSessionCollector(cleaner, 15*time.Second).Run(gctx)
		return nil
	})
	g.Go(func() error {
		idempotency.NewCleaner(raw, nil, a.log, time.Hour).Run(gctx)
		return nil
	})
	g.Go(func() error {
		ratelimit.NewCleaner(raw, fallback, a.log, 10*time.Minute, time.Hour).Run(gctx)
		return nil
	})

	if withWorker {
		if err := a.startWorker(gctx, svc, notifiers, catalog); err != nil {
			return err
		}
	}

	server := graceful.NewServer(a.log, cfg.Server.Addr, health.NewRouter(probes, a.log), cfg.Server.ShutdownTimeout)
	g.Go(func() error {
		return server.ListenAndServe(gctx)
	})

	a.shutdown.Register("readiness", func(context.Context) error {
		probes.Drain()
		return nil
	})

	a.log.Info("econbot serving",
		slog.Bool("discord", cfg.Discord.Enabled),
		slog.Bool("telegram", cfg.Telegram.Enabled),
		slog.Bool("worker", withWorker),
	)

	<-gctx.Done()
	a.log.Info("econbot shutting down")
	a.stop()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
