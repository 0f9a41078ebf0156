package runner

import "time"

// Predicate decides whether a repository should currently have a runner.
// The definition of "active" is policy, not a constant: callers compose
// predicates rather than the snapshotter hardcoding one.
type Predicate func(Repo) bool

// ActiveWithin treats a repository as active when its latest push or
// workflow run falls inside the window.
func ActiveWithin(window time.Duration) Predicate {
	return func(r Repo) bool {
		last := r.LastActivity()
		if last.IsZero() {
			return false
		}
		return time.Since(last) <= window
	}
}

// WorkflowsEnabled requires Actions to be enabled on the repository.
func WorkflowsEnabled() Predicate {
	return func(r Repo) bool { return r.WorkflowsEnabled }
}

// UsesSelfHosted requires at least one workflow targeting self-hosted
// runners. Repositories without one gain nothing from a runner container.
func UsesSelfHosted() Predicate {
	return func(r Repo) bool { return r.SelfHosted }
}

// All passes when every predicate passes. All() passes everything.
func All(preds ...Predicate) Predicate {
	return func(r Repo) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// Any passes when at least one predicate passes.
func Any(preds ...Predicate) Predicate {
	return func(r Repo) bool {
		for _, p := range preds {
			if p(r) {
				return true
			}
		}
		return false
	}
}
