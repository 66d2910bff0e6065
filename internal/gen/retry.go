package gen

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryPolicy bounds the backoff loop around rate-limited calls.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// withBackoff retries fn with exponential backoff and jitter, but only for
// rate-limit failures. Authentication failures are fatal and everything else
// propagates immediately, so the classification lives entirely here and the
// render core stays free of retry logic.
func withBackoff(ctx context.Context, policy RetryPolicy, op string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if Kind(err) != FailureRateLimited {
			return err
		}
		lastErr = err

		if attempt == policy.MaxAttempts-1 {
			break
		}

		delay := policy.InitialDelay << uint(attempt)
		if delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
		// Half fixed, half jitter, so synchronized clients spread out
		delay = delay/2 + time.Duration(rand.Int63n(int64(delay/2)+1))

		fmt.Printf("[!] %s: rate limited (attempt %d/%d), retrying in %v\n",
			op, attempt+1, policy.MaxAttempts, delay.Round(time.Millisecond))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, policy.MaxAttempts, lastErr)
}
