package runner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	a, b, c := id("o", "a"), id("o", "b"), id("o", "c")
	plan := Plan{Unchanged: 2}
	outcomes := []Outcome{
		{Action: Action{Op: OpStart, Identity: a}},
		{Action: Action{Op: OpStop, Identity: b, Instance: &Instance{Handle: "c-b"}}},
		{Action: Action{Op: OpStart, Identity: c}, Err: &StartError{Identity: c, Err: errors.New("boom")}},
	}

	s := Summarize(plan, outcomes)
	assert.Equal(t, 1, s.Started)
	assert.Equal(t, 1, s.Stopped)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 2, s.Unchanged)
	require.Len(t, s.Failures, 1)
	assert.Equal(t, c, s.Failures[0].Action.Identity)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(Plan{}, nil)
	assert.Zero(t, s.Started)
	assert.Zero(t, s.Stopped)
	assert.Zero(t, s.Failed)
	assert.Empty(t, s.Failures)
}
