package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Proton-105/econ-bot/internal/database"
	"github.com/Proton-105/econ-bot/migrations"
)

func newMigrateCmd(flags *rootFlags) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
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

			migrator := database.NewMigrator(a.db, a.log)
			var applied int
			if dir != "" {
				applied, err = migrator.ApplyDir(ctx, dir)
			} else {
				applied, err = migrator.ApplyFS(ctx, migrations.FS, ".")
			}
			if err != nil {
				return err
			}

			a.log.Info("database migrations applied successfully", slog.Int("applied", applied))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "read migrations from this directory instead of the embedded set")
	return cmd
}
