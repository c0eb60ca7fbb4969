// Package logger builds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/getsentry/sentry-go"
	slogsentry "github.com/samber/slog-sentry/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Proton-105/econ-bot/pkg/config"
)

// Level is shared by every handler built by New so that SetLevel takes effect
// without rebuilding the logger.
var level = new(slog.LevelVar)

// New creates the root logger described by cfg: stdout plus an optional
// rotated file, fanned out to Sentry for errors when enabled, with sensitive
// attributes masked.
func New(cfg config.Config) *slog.Logger {
	SetLevel(cfg.Logger.Level)

	var out io.Writer = os.Stdout
	if cfg.Logger.File.Path != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Logger.File.Path,
			MaxSize:    orDefault(cfg.Logger.File.MaxSizeMB, 100),
			MaxBackups: orDefault(cfg.Logger.File.MaxBackups, 5),
			MaxAge:     orDefault(cfg.Logger.File.MaxAgeDays, 14),
			Compress:   cfg.Logger.File.Compress,
		})
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.Logger.Level == "debug"}

	var handler slog.Handler
	if strings.EqualFold(cfg.Logger.Format, "text") {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	if cfg.Sentry.Enabled && sentry.CurrentHub().Client() != nil {
		sentryHandler := slogsentry.Option{
			Level:     slog.LevelError,
			AddSource: true,
		}.NewSentryHandler()
		handler = NewFanoutHandler(handler, sentryHandler)
	}

	return slog.New(NewMaskingHandler(handler)).With(slog.String("env", cfg.AppEnv))
}

// InitSentry configures the global Sentry hub. It is a no-op when disabled.
func InitSentry(cfg config.Config) error {
	if !cfg.Sentry.Enabled {
		return nil
	}

	environment := cfg.Sentry.Environment
	if environment == "" {
		environment = cfg.AppEnv
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.Sentry.DSN,
		Environment: environment,
		SampleRate:  cfg.Sentry.SampleRate,
	})
}

// SetLevel changes the level of every logger created by New. Unknown names
// fall back to info.
func SetLevel(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		level.Set(slog.LevelDebug)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	default:
		level.Set(slog.LevelInfo)
	}
}

func orDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
