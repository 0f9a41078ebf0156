package cli

import (
	"github.com/spf13/cobra"

	"github.com/marksverdhei/park/internal/config"
)

// Execute builds the command tree and runs it.
func Execute(cfg *config.Config) error {
	rootCmd := &cobra.Command{
		Use:   "park",
		Short: "Keep self-hosted GitHub Actions runners in sync with your active repositories",
		Long: `park maintains one Dockerised self-hosted GitHub Actions runner per
active repository. Each invocation discovers which repositories should
have a runner, compares that against the containers currently on the
host, and starts or stops runners to converge the two. It keeps no state
between runs: point a cron job or systemd timer at "park sync" and it
re-derives everything from GitHub and Docker every time.`,
		Example: `  # Reconcile once (run this from cron)
  park sync

  # See what a run would do without touching anything
  park plan

  # Show desired repositories next to current runner containers
  park status`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newSyncCommand(cfg),
		newPlanCommand(cfg),
		newStatusCommand(cfg),
		newVersionCommand(),
	)

	return rootCmd.Execute()
}
