package main

import (
	"fmt"
	"os"
	"time"

	"github.com/marksverdhei/park/internal/cli"
	"github.com/marksverdhei/park/internal/config"
	"github.com/marksverdhei/park/internal/sentry"
	"github.com/marksverdhei/park/internal/version"
)

func main() {
	// Load the configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Optional error reporting, enabled by SENTRY_DSN
	if err := sentry.Initialize(version.Version); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: sentry init failed: %v\n", err)
	}

	// Execute with config
	if err := cli.Execute(cfg); err != nil {
		sentry.CaptureError(err)
		sentry.Flush(2 * time.Second)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sentry.Flush(2 * time.Second)
}
