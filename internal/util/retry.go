package util

import (
	"context"
	"fmt"
	"time"
)

// Retry runs fn until it succeeds, doubling the wait between attempts.
// The quote providers throttle bursts, so callers should start with a wait
// long enough for a rate-limit window to pass (the refresh paths use 500ms
// and up). Returns nil on the first success, the last error once attempts
// are exhausted, or the context error if cancelled while waiting.
func Retry(ctx context.Context, attempts int, initial time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("util: retry needs at least one attempt, got %d", attempts)
	}

	wait := initial
	for {
		err := fn()
		if err == nil {
			return nil
		}
		attempts--
		if attempts == 0 {
			return err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}
