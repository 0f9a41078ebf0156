package runner

import (
	"context"
	"fmt"
	"sync"
)

// fakeDirectory serves a fixed repository listing.
type fakeDirectory struct {
	repos []Repo
	err   error
}

func (d *fakeDirectory) ListRepos(ctx context.Context) ([]Repo, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.repos, nil
}

// fakeEngine simulates the container engine in memory. Starts and stops
// mutate the instance set so convergence can be tested by re-snapshotting.
type fakeEngine struct {
	mu        sync.Mutex
	instances []Instance
	listErr   error
	startErr  map[Identity]error
	stopErr   map[string]error

	started []Identity
	stopped []string
	nextID  int
}

func (e *fakeEngine) ListRunners(ctx context.Context) ([]Instance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listErr != nil {
		return nil, e.listErr
	}
	out := make([]Instance, len(e.instances))
	copy(out, e.instances)
	return out, nil
}

func (e *fakeEngine) StartRunner(ctx context.Context, id Identity) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.startErr[id]; err != nil {
		return "", err
	}
	e.nextID++
	handle := fmt.Sprintf("c-%d", e.nextID)
	e.instances = append(e.instances, Instance{Identity: id, Handle: handle, State: StateRunning})
	e.started = append(e.started, id)
	return handle, nil
}

func (e *fakeEngine) StopRunner(ctx context.Context, handle string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.stopErr[handle]; err != nil {
		return err
	}
	kept := e.instances[:0]
	for _, inst := range e.instances {
		if inst.Handle != handle {
			kept = append(kept, inst)
		}
	}
	e.instances = kept
	e.stopped = append(e.stopped, handle)
	return nil
}
