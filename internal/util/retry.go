package util

import (
	"context"
	"errors"
	"time"
)

// RetryWithDelay calls fn up to maxTries times, sleeping delay between
// attempts, until it succeeds, ctx is done, or stop reports the error as
// final. If maxTries <= 0, it defaults to 1. A nil stop retries every error.
func RetryWithDelay[T any](ctx context.Context, maxTries int, delay time.Duration, stop func(error) bool, fn func(context.Context) (T, error)) (T, error) {
	if maxTries <= 0 {
		maxTries = 1
	}
	var lastErr error
	var zero T
	for i := 0; i < maxTries; i++ {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		if stop != nil && stop(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}
