package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// IsCI detects if the CLI is running in a CI or otherwise non-interactive
// environment. Colored output is disabled there.
func IsCI() bool {
	ciEnvVars := []string{
		"CI",
		"CONTINUOUS_INTEGRATION",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"CIRCLECI",
		"JENKINS_URL",
		"BUILDKITE",
		"DRONE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return true
		}
	}

	// Check if stdout is not a TTY (piped or redirected)
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return true
	}

	return false
}

// Logger writes leveled, optionally colored messages. A nil Logger is
// valid and silent, so components can take one without nil checks.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	debug bool

	warn *color.Color
	fail *color.Color
}

// New creates a Logger writing to out. Debug messages are dropped unless
// debug is set.
func New(out io.Writer, debug bool) *Logger {
	return &Logger{
		out:   out,
		debug: debug,
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed),
	}
}

// Stderr returns a Logger for the process stderr with color disabled in
// CI environments.
func Stderr(debug bool) *Logger {
	if IsCI() {
		color.NoColor = true
	}
	return New(os.Stderr, debug)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if l == nil || !l.debug {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "debug: "+format+"\n", args...)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, format+"\n", args...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warn.Fprintf(l.out, "warning: "+format+"\n", args...)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fail.Fprintf(l.out, "error: "+format+"\n", args...)
}
