package retry

import (
	"context"
	"fmt"
	"time"
)

type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // linear backoff: attempt * Delay
}

// Do calls fn until it succeeds, the attempts run out or ctx is done.
// MaxAttempts below 1 is treated as a single attempt.
func Do[T any](ctx context.Context, cfg Config, fn func(ctx context.Context) (T, error)) (T, error) {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	for attempt := 1; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt == attempts {
			if attempts == 1 {
				return zero, err
			}
			return zero, fmt.Errorf("failed after %d attempts: %w", attempts, err)
		}

		delay := cfg.Delay
		if cfg.Backoff {
			delay = time.Duration(attempt) * cfg.Delay
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
