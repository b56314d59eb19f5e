package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

const (
	connectAttempts = 3
	connectDelay    = time.Second
)

// connectWithRetry runs connect up to connectAttempts times, doubling the
// delay after each failure. Returns the last error if all attempts fail, or
// ctx.Err() if cancelled.
func connectWithRetry(ctx context.Context, logger *log.Logger, backend string, connect func(context.Context) error) error {
	return retry(ctx, connectAttempts, connectDelay, func() error {
		err := connect(ctx)
		if err != nil {
			logger.Warn("backend not reachable", "backend", backend, "err", err)
		}
		return err
	})
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
