package runner

// Summary aggregates the outcomes of a run for reporting. It is a pure
// rollup; emission is the caller's concern.
type Summary struct {
	Started   int
	Stopped   int
	Failed    int
	Unchanged int
	Failures  []Outcome
}

// Summarize counts successes and failures per operation. Failed outcomes
// are carried whole so the report can name the repository and reason.
func Summarize(plan Plan, outcomes []Outcome) Summary {
	s := Summary{Unchanged: plan.Unchanged}
	for _, o := range outcomes {
		if o.Err != nil {
			s.Failed++
			s.Failures = append(s.Failures, o)
			continue
		}
		switch o.Action.Op {
		case OpStart:
			s.Started++
		case OpStop:
			s.Stopped++
		}
	}
	return s
}
