// Package resilience provides retry and circuit-breaker primitives.
// The swap core never retries internally; these are for callers (poll
// loops, notification delivery) layered on top of it.
package resilience

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64 // 0.0 to 1.0
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
		Jitter:      0.1,
	}
}

// Retry executes fn with exponential backoff until it succeeds, the
// attempts are exhausted, or the context is cancelled.
func Retry(ctx context.Context, cfg RetryConfig, fn func(context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-time.After(backoffDelay(attempt, cfg)):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled during backoff: %w", ctx.Err())
		}
	}

	return fmt.Errorf("max retry attempts reached: %w", lastErr)
}

// RetryWithResult is Retry for functions returning a value.
func RetryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-time.After(backoffDelay(attempt, cfg)):
		case <-ctx.Done():
			return zero, fmt.Errorf("retry cancelled during backoff: %w", ctx.Err())
		}
	}

	return zero, fmt.Errorf("max retry attempts reached: %w", lastErr)
}

func backoffDelay(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter > 0 {
		jitterAmount := delay * cfg.Jitter
		delay = delay - jitterAmount + rand.Float64()*jitterAmount*2
	}
	return time.Duration(delay)
}
