package database

import (
	"context"
	"fmt"
	"time"

	"rrhh/internal/apperror"
	"rrhh/internal/logger"
)

// WithLockRetry calls fn until it succeeds, fails with an error other than
// SQLite busy/locked, or attempts run out. Waits backoff between attempts.
func WithLockRetry(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !apperror.IsBusy(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		logger.FromContext(ctx).Warn().Err(err).Int("attempt", attempt).Msg("database locked, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("database still locked after %d attempts: %w", attempts, err)
}
