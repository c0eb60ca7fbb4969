package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	_ "github.com/lib/pq"
	"github.com/spf13/viper"

	"github.com/Proton-105/econ-bot/internal/economy"
	"github.com/Proton-105/econ-bot/internal/guildcache"
	"github.com/Proton-105/econ-bot/internal/i18n"
	"github.com/Proton-105/econ-bot/internal/lifecycle"
	"github.com/Proton-105/econ-bot/internal/repository"
	"github.com/Proton-105/econ-bot/internal/session"
	"github.com/Proton-105/econ-bot/pkg/config"
	"github.com/Proton-105/econ-bot/pkg/logger"
	pkgredis "github.com/Proton-105/econ-bot/pkg/redis"
)

// app holds the shared infrastructure every subcommand starts from.
type app struct {
	cfg      *config.Config
	viper    *viper.Viper
	log      *slog.Logger
	shutdown *lifecycle.Shutdown

	db    *sql.DB
	redis *pkgredis.Client
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func loadApp(flags *rootFlags) (*app, error) {
	if flags.env != "" {
		if err := os.Setenv("APP_ENV", flags.env); err != nil {
			return nil, err
		}
	}

	var (
		cfg *config.Config
		v   *viper.Viper
		err error
	)
	if flags.configPath != "" {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
		}
		cfg, v, err = config.LoadFile(flags.configPath, env)
	} else {
		cfg, v, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if err := logger.InitSentry(*cfg); err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	log := logger.New(*cfg)

	a := &app{cfg: cfg, viper: v, log: log, shutdown: lifecycle.NewShutdown(log)}
	if cfg.Sentry.Enabled {
		a.shutdown.Register("sentry", func(context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		})
	}
	return a, nil
}

func (a *app) openDB(ctx context.Context) error {
	db, err := sql.Open("postgres", a.cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(a.cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(a.cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(a.cfg.Database.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	a.db = db
	a.shutdown.Closer("database", db)
	return nil
}

func (a *app) openRedis(ctx context.Context) error {
	client, err := pkgredis.New(ctx, a.cfg.Redis)
	if err != nil {
		return err
	}
	a.redis = client
	a.shutdown.Closer("redis", client)
	return nil
}

func (a *app) catalog() (*i18n.Manager, error) {
	catalog, err := i18n.LoadFromDir(a.cfg.I18n.Dir, a.cfg.I18n.DefaultLang)
	if err != nil {
		return nil, fmt.Errorf("load locales: %w", err)
	}
	return catalog, nil
}

// economy builds the ledger over Postgres, with guild configs cached in Redis
// and sessions kept in Redis.
func (a *app) economy(opts ...economy.Option) (*economy.Service, *session.RedisStore) {
	profiles := repository.NewProfileRepository(a.db, a.log)
	guilds := guildcache.New(
		repository.NewGuildRepository(a.db, a.log),
		pkgredis.NewMetricsClient(a.redis),
		guildcache.DefaultTTL,
		a.log,
	)
	sessions := session.NewRedisStore(a.redis.Raw(), a.log)

	return economy.NewService(profiles, guilds, sessions, a.log, opts...), sessions
}

// stop runs the shutdown hooks within the configured timeout.
func (a *app) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.shutdown.Execute(ctx); err != nil {
		a.log.Error("shutdown finished with errors", slog.Any("error", err))
	}
}
