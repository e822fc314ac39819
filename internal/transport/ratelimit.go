package transport

import (
	"context"
	"sync"
	"time"
)

// Limiter throttles outgoing requests to respect an external service's
// rate-limit budget. It is an explicit resource passed into each client
// rather than a process-wide singleton, so tests can inject NopLimiter.
type Limiter interface {
	// Wait blocks until a request may proceed or the context is done.
	Wait(ctx context.Context) error
}

// NopLimiter never throttles.
type NopLimiter struct{}

// Wait implements Limiter.
func (NopLimiter) Wait(context.Context) error { return nil }

// RateLimiter is a token bucket: burst tokens refill at a fixed rate.
// Safe for concurrent use.
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	burst    float64
	rate     float64 // tokens per second
	lastFill time.Time
}

// NewRateLimiter creates a limiter allowing perMinute requests per
// minute with the given burst capacity.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		tokens:   float64(burst),
		burst:    float64(burst),
		rate:     float64(perMinute) / 60,
		lastFill: time.Now(),
	}
}

// Wait implements Limiter. It sleeps until a token is available, waking
// early if the context is canceled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wait := rl.reserve()
		if wait <= 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve takes a token if available, otherwise returns how long to wait
// before trying again.
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.tokens += now.Sub(rl.lastFill).Seconds() * rl.rate
	if rl.tokens > rl.burst {
		rl.tokens = rl.burst
	}
	rl.lastFill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return 0
	}

	deficit := 1 - rl.tokens
	return time.Duration(deficit / rl.rate * float64(time.Second))
}
