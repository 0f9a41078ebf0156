package sentry

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// Initialize sets up Sentry when SENTRY_DSN is present in the
// environment. Unconfigured, it is a no-op: a cron tool should not
// require an error tracker to run.
func Initialize(release string) error {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return nil
	}

	environment := os.Getenv("SENTRY_ENVIRONMENT")
	if environment == "" {
		environment = "production"
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
	})
}

// CaptureError reports a fatal run error, if Sentry is configured.
func CaptureError(err error) {
	if sentry.CurrentHub().Client() == nil {
		return
	}
	sentry.CaptureException(err)
}

// Flush waits for buffered events to be sent before the process exits.
func Flush(timeout time.Duration) {
	if sentry.CurrentHub().Client() != nil {
		sentry.Flush(timeout)
	}
}
