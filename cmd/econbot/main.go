// Command econbot runs the economy bot, its background worker and the
// schema migrations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	env        string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "econbot",
		Short:         "Discord and Telegram economy bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default ./configs/$APP_ENV.yaml)")
	root.PersistentFlags().StringVar(&flags.env, "env", "", "environment name, overrides APP_ENV")

	root.AddCommand(
		newServeCmd(flags),
		newWorkerCmd(flags),
		newMigrateCmd(flags),
	)
	return root
}
