// Package cli wires the pixelthreat subcommands.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/pixelthreat/internal/config"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	dbPath     string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "pixelthreat",
		Short:        "Perturb an image region and score the change against unsafe directions",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "pixelthreat.yaml", "Config file (missing file uses defaults)")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Run store path (overrides config and $"+config.EnvDB+")")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable verbose logging")

	cmd.AddCommand(
		perturbCmd(opts),
		scoreCmd(opts),
		inspectCmd(opts),
		replayCmd(opts),
		serveMarginsCmd(opts),
	)
	return cmd
}
