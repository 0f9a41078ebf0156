package runner

import (
	"context"
	"time"
)

// Repo is a repository as reported by the directory, before the activity
// predicate decides whether it should have a runner.
type Repo struct {
	Identity         Identity
	PushedAt         time.Time
	LastWorkflowRun  time.Time
	WorkflowsEnabled bool
	SelfHosted       bool
}

// LastActivity returns the most recent of the repository's push and
// workflow run timestamps.
func (r Repo) LastActivity() time.Time {
	if r.LastWorkflowRun.After(r.PushedAt) {
		return r.LastWorkflowRun
	}
	return r.PushedAt
}

// DesiredRepo is a repository that should currently have a runner.
type DesiredRepo struct {
	Identity         Identity
	LastActivity     time.Time
	WorkflowsEnabled bool
}

// InstanceState classifies a runner container as observed by the engine.
type InstanceState string

const (
	StateRunning  InstanceState = "running"
	StateStarting InstanceState = "starting"
	StateStopping InstanceState = "stopping"
	StateDead     InstanceState = "dead"
)

// InFlight reports whether the instance is mid-transition and must be left
// alone for the rest of this run.
func (s InstanceState) InFlight() bool {
	return s == StateStarting || s == StateStopping
}

// Instance is a runner container currently known to the engine. Identity is
// recovered from the container's labels; Handle is the engine's own
// identifier for it.
type Instance struct {
	Identity Identity
	Handle   string
	State    InstanceState
}

// ActionOp is the kind of change an action applies.
type ActionOp string

const (
	OpStart ActionOp = "start"
	OpStop  ActionOp = "stop"
)

// Action is a single start or stop decision. Start actions carry only an
// identity; stop actions also reference the instance to tear down.
type Action struct {
	Op       ActionOp
	Identity Identity
	Instance *Instance
}

// Plan is the ordered set of actions that converges actual state onto
// desired state. Stops come before starts to free engine resources first.
// No repository ever appears in both lists, so a parallel executor cannot
// race a stop against a start for the same repository.
type Plan struct {
	Stops     []Action
	Starts    []Action
	Unchanged int
}

// Actions returns the plan's actions in execution order.
func (p Plan) Actions() []Action {
	out := make([]Action, 0, len(p.Stops)+len(p.Starts))
	out = append(out, p.Stops...)
	out = append(out, p.Starts...)
	return out
}

// Empty reports whether the plan requires no changes.
func (p Plan) Empty() bool {
	return len(p.Stops) == 0 && len(p.Starts) == 0
}

// Outcome records the result of executing one action.
type Outcome struct {
	Action Action
	Err    error
}

// Directory lists repositories visible to the acting identity. Implemented
// by the GitHub client; faked in tests.
type Directory interface {
	ListRepos(ctx context.Context) ([]Repo, error)
}

// Engine manages runner containers. Implemented by the Docker client;
// faked in tests.
type Engine interface {
	ListRunners(ctx context.Context) ([]Instance, error)
	StartRunner(ctx context.Context, id Identity) (handle string, err error)
	StopRunner(ctx context.Context, handle string) error
}
