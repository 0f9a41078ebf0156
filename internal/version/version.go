package version

import "fmt"

var (
	// Version is the current version of the CLI, overridden by ldflags
	// during release builds.
	Version = "dev"

	commit = "unknown"
	date   = "unknown"
)

// String returns the full version string.
func String() string {
	return fmt.Sprintf("park %s (commit %s, built %s)", Version, commit, date)
}
