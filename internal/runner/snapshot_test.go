package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFiltersThroughPredicate(t *testing.T) {
	now := time.Now()
	dir := &fakeDirectory{repos: []Repo{
		{Identity: id("o", "fresh"), PushedAt: now.Add(-time.Hour), WorkflowsEnabled: true, SelfHosted: true},
		{Identity: id("o", "stale"), PushedAt: now.Add(-30 * 24 * time.Hour), WorkflowsEnabled: true, SelfHosted: true},
		{Identity: id("o", "hosted-only"), PushedAt: now.Add(-time.Hour), WorkflowsEnabled: true, SelfHosted: false},
	}}
	engine := &fakeEngine{}

	s := &Snapshotter{
		Directory: dir,
		Engine:    engine,
		Active:    All(ActiveWithin(7*24*time.Hour), UsesSelfHosted()),
	}

	desired, active, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
	require.Len(t, desired, 1)
	assert.Equal(t, id("o", "fresh"), desired[0].Identity)
}

func TestSnapshotDirectoryFailureIsFatal(t *testing.T) {
	s := &Snapshotter{
		Directory: &fakeDirectory{err: errors.New("503 service unavailable")},
		Engine:    &fakeEngine{},
	}

	_, _, err := s.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
}

func TestSnapshotEngineFailureIsFatal(t *testing.T) {
	s := &Snapshotter{
		Directory: &fakeDirectory{},
		Engine:    &fakeEngine{listErr: errors.New("cannot connect to the Docker daemon")},
	}

	_, _, err := s.Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrEngineUnavailable)
}

func TestSnapshotNilPredicateKeepsEverything(t *testing.T) {
	dir := &fakeDirectory{repos: []Repo{{Identity: id("o", "a")}, {Identity: id("o", "b")}}}
	s := &Snapshotter{Directory: dir, Engine: &fakeEngine{}}

	desired, _, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, desired, 2)
}
