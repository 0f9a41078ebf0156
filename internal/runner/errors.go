package runner

import (
	"errors"
	"fmt"
)

// Fatal discovery errors. Either one aborts the run before any action is
// taken: reconciling against a partial snapshot would tear down runners
// for repositories we simply failed to list.
var (
	ErrDirectoryUnavailable = errors.New("repository directory unavailable")
	ErrEngineUnavailable    = errors.New("runner engine unavailable")
)

// ErrMalformedLabel marks an instance whose labels do not decode to a
// repository identity. Such instances are foreign and never acted on.
var ErrMalformedLabel = errors.New("malformed runner label")

// StartError wraps a per-action failure to start a runner. The run
// continues; the repository stays un-serviced until the next run.
type StartError struct {
	Identity Identity
	Err      error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start runner for %s: %v", e.Identity, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// StopError wraps a per-action failure to stop a runner. The instance
// stays up and is retried on the next run.
type StopError struct {
	Identity Identity
	Handle   string
	Err      error
}

func (e *StopError) Error() string {
	return fmt.Sprintf("stop runner %s for %s: %v", e.Handle, e.Identity, e.Err)
}

func (e *StopError) Unwrap() error { return e.Err }
