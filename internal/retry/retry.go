package retry

import (
	"context"
	"time"
)

// Do invokes op up to maxRetries times, sleeping baseDelay * 2^attempt between
// attempts. Every failure is treated as retryable; the error from the final
// attempt is the one returned. A cancelled context aborts the wait.
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), maxRetries int, baseDelay time.Duration) (T, error) {
	var zero T
	if maxRetries < 1 {
		maxRetries = 1
	}
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if attempt == maxRetries-1 {
			break
		}
		delay := baseDelay << uint(attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, lastErr
}
