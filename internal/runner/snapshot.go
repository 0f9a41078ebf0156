package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Snapshotter captures desired and actual state at the start of a run.
// Both queries are read-only and hit disjoint systems, so they run
// concurrently. A failure of either is fatal for the run.
type Snapshotter struct {
	Directory Directory
	Engine    Engine
	Active    Predicate
}

// Snapshot queries the directory and the engine and returns the desired
// repository set alongside the currently observable runner instances.
func (s *Snapshotter) Snapshot(ctx context.Context) ([]DesiredRepo, []Instance, error) {
	var (
		repos     []Repo
		instances []Instance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		repos, err = s.Directory.ListRepos(gctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		instances, err = s.Engine.ListRunners(gctx)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	active := s.Active
	if active == nil {
		active = All()
	}

	desired := make([]DesiredRepo, 0, len(repos))
	for _, r := range repos {
		if !active(r) {
			continue
		}
		desired = append(desired, DesiredRepo{
			Identity:         r.Identity,
			LastActivity:     r.LastActivity(),
			WorkflowsEnabled: r.WorkflowsEnabled,
		})
	}
	return desired, instances, nil
}
