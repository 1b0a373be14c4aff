package api

import (
	"context"
	"errors"
	"time"

	"github.com/OnlyWorlds/worldtool/pkg/record"
)

// Retry policy for batch reads: an initial attempt plus three retries
// backed off at 1s, 2s, 4s. Client-side failures are never retried —
// they are not transient.
const (
	retryAttempts = 4
	retryBase     = time.Second
)

// sleep is swapped out by tests so backoff does not stall them.
var sleep = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retryable reports whether a failure is worth another attempt.
func retryable(err error) bool {
	return !errors.Is(err, record.ErrUnauthorized) &&
		!errors.Is(err, record.ErrValidation) &&
		!errors.Is(err, record.ErrNotFound) &&
		!errors.Is(err, record.ErrInvalidType) &&
		!errors.Is(err, record.ErrInvalidID) &&
		!errors.Is(err, context.Canceled)
}

// withRetry runs fn up to retryAttempts times with exponential backoff.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	delay := retryBase
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			if serr := sleep(ctx, delay); serr != nil {
				return serr
			}
			delay *= 2
		}
		if err = fn(); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
	}
	return err
}
