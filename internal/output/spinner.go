package output

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows progress during the discovery phase. In CI or piped
// output it degrades to a single printed line.
type Spinner struct {
	spinner     *spinner.Spinner
	interactive bool
	message     string
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string) *Spinner {
	s := &Spinner{
		interactive: !IsCI(),
		message:     message,
	}

	if s.interactive {
		s.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.spinner.Suffix = " " + message
		s.spinner.Writer = os.Stderr
		s.spinner.Color("blue", "bold")
	}

	return s
}

// Start starts the animation, or prints the message once in CI mode.
func (s *Spinner) Start() {
	if s.interactive {
		s.spinner.Start()
		return
	}
	fmt.Fprintf(os.Stderr, "%s...\n", s.message)
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	if s.interactive {
		s.spinner.Stop()
	}
}
