package util

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// IsTransient determines if an error is worth an immediate retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var tempErr interface{ Temporary() bool }
	if errors.As(err, &tempErr) && tempErr.Temporary() {
		return true
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return true
	}

	return false
}

// Retry runs fn, retrying up to retries additional times when the failure
// is transient. Delay doubles between attempts, starting at baseDelay.
func Retry(ctx context.Context, retries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error
	delay := baseDelay

	for attempt := 0; attempt <= retries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == retries {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("cancelled after %d attempts: %w", attempt+1, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return lastErr
}
