package runner

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/marksverdhei/park/internal/util"
)

// Executor applies a plan against the engine. Every action is attempted
// independently: one repository's failure never blocks another's
// reconciliation, and failures are recorded rather than propagated. The
// next run re-diffs and retries whatever is still off.
type Executor struct {
	Engine Engine

	// Concurrency bounds simultaneous engine calls. Values below 1 mean
	// sequential execution.
	Concurrency int

	// Retries is the number of immediate re-attempts for transient engine
	// errors per action.
	Retries int

	// StartInterval spaces out container starts so a large plan does not
	// overwhelm the engine or the registration endpoint. Zero disables
	// the limiter.
	StartInterval time.Duration
}

// Execute runs every action in the plan and returns one outcome per
// action, in plan order. When ctx expires, in-flight actions finish and
// the remainder are recorded as failed with the context error; the run is
// partially completed, not fatal.
func (e *Executor) Execute(ctx context.Context, plan Plan) []Outcome {
	actions := plan.Actions()
	outcomes := make([]Outcome, len(actions))

	limit := e.Concurrency
	if limit < 1 {
		limit = 1
	}

	var starts *rate.Limiter
	if e.StartInterval > 0 {
		starts = rate.NewLimiter(rate.Every(e.StartInterval), 1)
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for i, action := range actions {
		// Past the deadline: stop dispatching, leave the rest for the
		// next run.
		if err := ctx.Err(); err != nil {
			outcomes[i] = Outcome{Action: action, Err: err}
			continue
		}

		i, action := i, action
		g.Go(func() error {
			outcomes[i] = Outcome{Action: action, Err: e.apply(ctx, action, starts)}
			return nil
		})
	}

	g.Wait()
	return outcomes
}

func (e *Executor) apply(ctx context.Context, action Action, starts *rate.Limiter) error {
	switch action.Op {
	case OpStart:
		if starts != nil {
			if err := starts.Wait(ctx); err != nil {
				return &StartError{Identity: action.Identity, Err: err}
			}
		}
		err := util.Retry(ctx, e.Retries, 500*time.Millisecond, func() error {
			_, err := e.Engine.StartRunner(ctx, action.Identity)
			return err
		})
		if err != nil {
			return &StartError{Identity: action.Identity, Err: err}
		}
		return nil

	case OpStop:
		err := util.Retry(ctx, e.Retries, 500*time.Millisecond, func() error {
			return e.Engine.StopRunner(ctx, action.Instance.Handle)
		})
		if err != nil {
			return &StopError{Identity: action.Identity, Handle: action.Instance.Handle, Err: err}
		}
		return nil
	}
	return nil
}
