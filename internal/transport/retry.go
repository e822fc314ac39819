package transport

import (
	"context"
	"math/rand"
	"time"

	"github.com/questlog/questlog/pkg/constants"
	"github.com/questlog/questlog/pkg/errors"
)

// RetryConfig bounds retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultRetryConfig returns the standard retry bounds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: constants.MaxRetries,
		BaseBackoff: constants.RetryBackoff,
		MaxBackoff:  constants.MaxRetryBackoff,
	}
}

// Retry runs fn up to cfg.MaxAttempts times, sleeping with exponential
// backoff plus jitter between attempts. Only transient errors (rate
// limits, timeouts, upstream unavailability) are retried; anything else
// surfaces immediately. The last error is returned when attempts are
// exhausted.
func Retry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultRetryConfig()
	}

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !errors.IsTransient(err) {
			return err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		if sleepErr := sleep(ctx, Backoff(cfg, attempt)); sleepErr != nil {
			return sleepErr
		}
	}
	return err
}

// Backoff returns the backoff duration for the given attempt (1-based):
// base * 2^(attempt-1), capped, with up to 25% random jitter added so
// concurrent workers do not retry in lockstep.
func Backoff(cfg RetryConfig, attempt int) time.Duration {
	d := cfg.BaseBackoff << (attempt - 1)
	if d > cfg.MaxBackoff || d <= 0 {
		d = cfg.MaxBackoff
	}
	jitter := time.Duration(rand.Int63n(int64(d)/4 + 1))
	return d + jitter
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
