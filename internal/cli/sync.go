package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marksverdhei/park/internal/config"
	"github.com/marksverdhei/park/internal/docker"
	"github.com/marksverdhei/park/internal/github"
	"github.com/marksverdhei/park/internal/output"
	"github.com/marksverdhei/park/internal/runner"
)

// startSpacing paces container starts so a large backlog does not slam
// the Docker daemon and the registration endpoint at once.
const startSpacing = time.Second

type syncOptions struct {
	cfg *config.Config

	owner             string
	window            time.Duration
	concurrency       int
	deadline          time.Duration
	retries           int
	requireSelfHosted bool
	dryRun            bool
}

func newSyncCommand(cfg *config.Config) *cobra.Command {
	opts := &syncOptions{cfg: cfg}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile runner containers against active repositories",
		Long: `Run one reconciliation: list the repositories that should have a
runner, list the runner containers on this host, and start or stop
containers until the two match.

A repository is serviced when it had a push or a workflow run within the
activity window and its workflows target self-hosted runners. Per-action
failures are reported but do not fail the run; the next invocation
retries whatever is still off. Only a discovery failure (GitHub or the
Docker daemon unreachable) is fatal.`,
		Example: `  # Reconcile with defaults (7 day window, sequential execution)
  park sync

  # Shorter window, parallel starts/stops
  park sync --window 48h --concurrency 4

  # Service every repo with workflows, self-hosted or not
  park sync --require-self-hosted=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context())
		},
	}

	addSyncFlags(cmd, cfg, opts)
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the plan without executing it")

	return cmd
}

func addSyncFlags(cmd *cobra.Command, cfg *config.Config, opts *syncOptions) {
	cmd.Flags().StringVar(&opts.owner, "owner", cfg.Owner, "User or organisation whose repositories are managed (default: token owner)")
	cmd.Flags().DurationVar(&opts.window, "window", cfg.ActivityWindow, "Activity window: repositories with a push or workflow run this recent get a runner")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", cfg.Concurrency, "Maximum simultaneous start/stop operations")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", cfg.Deadline, "Overall deadline for the run")
	cmd.Flags().IntVar(&opts.retries, "retries", cfg.Retries, "Immediate retries per action for transient engine errors")
	cmd.Flags().BoolVar(&opts.requireSelfHosted, "require-self-hosted", true, "Only service repositories whose workflows target self-hosted runners")
}

func (opts *syncOptions) run(ctx context.Context) error {
	if err := opts.cfg.RequireToken(); err != nil {
		return err
	}

	log := output.Stderr(opts.cfg.Debug)
	runID := uuid.NewString()
	log.Debugf("run %s starting", runID)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.deadline)
	defer cancel()

	gh := github.NewClient(opts.cfg)
	directory := &github.Directory{
		Client:           gh,
		Owner:            opts.owner,
		InspectWorkflows: opts.requireSelfHosted,
		Log:              log,
	}

	engine, err := docker.NewEngine(ctx, opts.cfg, gh, log)
	if err != nil {
		return fmt.Errorf("%w: %v", runner.ErrEngineUnavailable, err)
	}
	defer engine.Close()

	snap := &runner.Snapshotter{
		Directory: directory,
		Engine:    engine,
		Active:    opts.activePredicate(),
	}

	spin := output.NewSpinner("Discovering repositories and runners")
	spin.Start()
	desired, active, err := snap.Snapshot(ctx)
	spin.Stop()
	if err != nil {
		return err
	}
	log.Debugf("run %s snapshot: %d desired repositories, %d runner containers", runID, len(desired), len(active))

	plan := runner.BuildPlan(desired, active)
	printPlan(os.Stdout, plan)

	if opts.dryRun || plan.Empty() {
		return nil
	}

	exec := &runner.Executor{
		Engine:        engine,
		Concurrency:   opts.concurrency,
		Retries:       opts.retries,
		StartInterval: startSpacing,
	}
	outcomes := exec.Execute(ctx, plan)
	summary := runner.Summarize(plan, outcomes)
	printSummary(os.Stdout, summary, log)

	// Per-action failures self-heal on the next run; only discovery
	// failures make the invocation itself fail.
	return nil
}

func (opts *syncOptions) activePredicate() runner.Predicate {
	preds := []runner.Predicate{
		runner.ActiveWithin(opts.window),
		runner.WorkflowsEnabled(),
	}
	if opts.requireSelfHosted {
		preds = append(preds, runner.UsesSelfHosted())
	}
	return runner.All(preds...)
}
