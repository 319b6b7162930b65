package service

import (
	"context"
	"fmt"
	"math"
	"time"
)

// withRetry re-invokes fn with exponential backoff, doubling from baseDelay
// with no jitter, and surfaces the last error only after exhausting attempts.
// sleep is injected so tests can count delays instead of waiting for them.
func withRetry(ctx context.Context, maxAttempts int, baseDelay time.Duration, sleep func(time.Duration), fn func() error) error {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(); err != nil {
			lastErr = err
			if attempt == maxAttempts {
				break
			}
			sleep(baseDelay * time.Duration(math.Pow(2, float64(attempt-1))))
			continue
		}
		return nil
	}

	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
