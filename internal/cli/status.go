package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/marksverdhei/park/internal/config"
	"github.com/marksverdhei/park/internal/docker"
	"github.com/marksverdhei/park/internal/github"
	"github.com/marksverdhei/park/internal/output"
	"github.com/marksverdhei/park/internal/runner"
)

type statusOptions struct {
	cfg *config.Config

	owner  string
	window time.Duration
}

func newStatusCommand(cfg *config.Config) *cobra.Command {
	opts := &statusOptions{cfg: cfg}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show desired repositories next to current runner containers",
		Long: `Snapshot both sides of the reconciliation without changing anything:
which repositories currently qualify for a runner, and which runner
containers exist on this host.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&opts.owner, "owner", cfg.Owner, "User or organisation whose repositories are managed (default: token owner)")
	cmd.Flags().DurationVar(&opts.window, "window", cfg.ActivityWindow, "Activity window")

	return cmd
}

func (opts *statusOptions) run(ctx context.Context) error {
	if err := opts.cfg.RequireToken(); err != nil {
		return err
	}

	log := output.Stderr(opts.cfg.Debug)

	ctx, cancel := context.WithTimeout(ctx, opts.cfg.Deadline)
	defer cancel()

	gh := github.NewClient(opts.cfg)
	directory := &github.Directory{
		Client:           gh,
		Owner:            opts.owner,
		InspectWorkflows: true,
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
		Active: runner.All(
			runner.ActiveWithin(opts.window),
			runner.WorkflowsEnabled(),
			runner.UsesSelfHosted(),
		),
	}

	spin := output.NewSpinner("Discovering repositories and runners")
	spin.Start()
	desired, active, err := snap.Snapshot(ctx)
	spin.Stop()
	if err != nil {
		return err
	}

	return pterm.DefaultTable.WithHasHeader().WithData(statusTable(desired, active)).Render()
}

func statusTable(desired []runner.DesiredRepo, active []runner.Instance) pterm.TableData {
	// Duplicate runners for one repository each get their own row, so a
	// pending collapse is visible here before sync stops the extras.
	byIdentity := make(map[runner.Identity][]runner.Instance, len(active))
	for _, inst := range active {
		byIdentity[inst.Identity] = append(byIdentity[inst.Identity], inst)
	}

	data := pterm.TableData{{"REPOSITORY", "LAST ACTIVITY", "RUNNER", "STATE"}}
	seen := make(map[runner.Identity]bool, len(desired))
	for _, d := range desired {
		seen[d.Identity] = true
		instances := byIdentity[d.Identity]
		if len(instances) == 0 {
			data = append(data, []string{d.Identity.String(), ago(d.LastActivity), "-", "missing"})
			continue
		}
		for _, inst := range instances {
			data = append(data, []string{d.Identity.String(), ago(d.LastActivity), short(inst.Handle), string(inst.State)})
		}
	}
	for _, inst := range active {
		if !seen[inst.Identity] {
			data = append(data, []string{inst.Identity.String(), "-", short(inst.Handle), string(inst.State) + " (surplus)"})
		}
	}
	return data
}

func short(handle string) string {
	if len(handle) > 12 {
		return handle[:12]
	}
	return handle
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return time.Since(t).Round(time.Minute).String() + " ago"
}
