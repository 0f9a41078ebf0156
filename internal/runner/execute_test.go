package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteOneFailureDoesNotBlockOthers(t *testing.T) {
	// StartFor(b) fails; StopFor(c) still runs and succeeds.
	b, c := id("o", "b"), id("o", "c")
	engine := &fakeEngine{
		instances: []Instance{running(c, "c-c")},
		startErr:  map[Identity]error{b: errors.New("resource exhausted")},
	}
	plan := BuildPlan(desired(b), engine.instances)

	exec := &Executor{Engine: engine}
	outcomes := exec.Execute(context.Background(), plan)
	require.Len(t, outcomes, 2)

	summary := Summarize(plan, outcomes)
	assert.Equal(t, 1, summary.Stopped)
	assert.Equal(t, 0, summary.Started)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)

	var startErr *StartError
	require.ErrorAs(t, summary.Failures[0].Err, &startErr)
	assert.Equal(t, b, startErr.Identity)
	assert.Equal(t, []string{"c-c"}, engine.stopped)
}

func TestExecuteOutcomesMatchPlanOrder(t *testing.T) {
	a, b := id("o", "a"), id("o", "b")
	engine := &fakeEngine{instances: []Instance{running(b, "c-b")}}
	plan := BuildPlan(desired(a), engine.instances)

	exec := &Executor{Engine: engine, Concurrency: 4}
	outcomes := exec.Execute(context.Background(), plan)

	require.Len(t, outcomes, 2)
	assert.Equal(t, OpStop, outcomes[0].Action.Op)
	assert.Equal(t, OpStart, outcomes[1].Action.Op)
}

func TestExecuteRetriesTransientStartFailure(t *testing.T) {
	a := id("o", "a")
	engine := &flakyEngine{fakeEngine: fakeEngine{}, failFirst: 1}
	plan := BuildPlan(desired(a), nil)

	exec := &Executor{Engine: engine, Retries: 1}
	outcomes := exec.Execute(context.Background(), plan)
	require.Len(t, outcomes, 1)
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, 2, engine.attempts)
}

func TestExecuteNoRetryForPermanentFailure(t *testing.T) {
	a := id("o", "a")
	engine := &fakeEngine{startErr: map[Identity]error{a: errors.New("registration token rejected")}}
	plan := BuildPlan(desired(a), nil)

	exec := &Executor{Engine: engine, Retries: 3}
	outcomes := exec.Execute(context.Background(), plan)
	require.Len(t, outcomes, 1)
	assert.Error(t, outcomes[0].Err)
	assert.Empty(t, engine.started)
}

func TestExecuteExpiredDeadlineSkipsDispatch(t *testing.T) {
	a, b := id("o", "a"), id("o", "b")
	engine := &fakeEngine{}
	plan := BuildPlan(desired(a, b), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &Executor{Engine: engine}
	outcomes := exec.Execute(ctx, plan)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
	assert.Empty(t, engine.started)
}

func TestExecuteEmptyPlan(t *testing.T) {
	exec := &Executor{Engine: &fakeEngine{}}
	assert.Empty(t, exec.Execute(context.Background(), Plan{}))
}

func TestExecuteRateLimitsStarts(t *testing.T) {
	ids := []Identity{id("o", "a"), id("o", "b"), id("o", "c")}
	engine := &fakeEngine{}
	plan := BuildPlan(desired(ids...), nil)

	interval := 20 * time.Millisecond
	exec := &Executor{Engine: engine, Concurrency: 3, StartInterval: interval}

	begin := time.Now()
	outcomes := exec.Execute(context.Background(), plan)
	elapsed := time.Since(begin)

	for _, o := range outcomes {
		require.NoError(t, o.Err)
	}
	// Three starts through a one-per-interval limiter take at least two
	// full intervals after the initial burst token.
	assert.GreaterOrEqual(t, elapsed, 2*interval)
}

// flakyEngine fails the first failFirst start attempts with a transient
// error, then behaves like fakeEngine.
type flakyEngine struct {
	fakeEngine
	failFirst int
	attempts  int
}

func (e *flakyEngine) StartRunner(ctx context.Context, id Identity) (string, error) {
	e.attempts++
	if e.attempts <= e.failFirst {
		return "", transientError{}
	}
	return e.fakeEngine.StartRunner(ctx, id)
}

type transientError struct{}

func (transientError) Error() string   { return "connection reset by peer" }
func (transientError) Temporary() bool { return true }
