package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/marksverdhei/park/internal/output"
	"github.com/marksverdhei/park/internal/runner"
)

var (
	startColor = color.New(color.FgGreen).SprintFunc()
	stopColor  = color.New(color.FgRed).SprintFunc()
	dimColor   = color.New(color.Faint).SprintFunc()
)

func printPlan(w io.Writer, plan runner.Plan) {
	if plan.Empty() {
		fmt.Fprintf(w, "Nothing to do (%d runners already in sync)\n", plan.Unchanged)
		return
	}

	for _, a := range plan.Stops {
		fmt.Fprintf(w, "%s %s %s\n", stopColor("stop "), a.Identity, dimColor(fmt.Sprintf("(container %.12s)", a.Instance.Handle)))
	}
	for _, a := range plan.Starts {
		fmt.Fprintf(w, "%s %s\n", startColor("start"), a.Identity)
	}
	fmt.Fprintf(w, "\nPlan: %d to start, %d to stop, %d unchanged\n",
		len(plan.Starts), len(plan.Stops), plan.Unchanged)
}

func printSummary(w io.Writer, s runner.Summary, log *output.Logger) {
	fmt.Fprintf(w, "\nApplied: %d started, %d stopped, %d failed, %d unchanged\n",
		s.Started, s.Stopped, s.Failed, s.Unchanged)

	for _, f := range s.Failures {
		log.Errorf("%s %s: %v", f.Action.Op, f.Action.Identity, f.Err)
	}
}
