package cli

import (
	"github.com/spf13/cobra"

	"github.com/marksverdhei/park/internal/config"
)

func newPlanCommand(cfg *config.Config) *cobra.Command {
	opts := &syncOptions{cfg: cfg, dryRun: true}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a sync would do without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context())
		},
	}

	addSyncFlags(cmd, cfg, opts)
	return cmd
}
