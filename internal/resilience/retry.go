package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"
)

// RetryConfig tunes [Retry]'s bounded exponential backoff.
type RetryConfig struct {
	// Name is a human-readable label used in log messages.
	Name string

	// MaxAttempts is the total number of attempts, including the first.
	// Default: 3.
	MaxAttempts int

	// BaseDelay is the delay before the first retry. Subsequent delays
	// double each attempt. Default: 200ms.
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff delay. Default: 5s.
	MaxDelay time.Duration
}

// withDefaults replaces zero-value fields with the package defaults.
func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 200 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 5 * time.Second
	}
	return c
}

// Retry calls fn up to cfg.MaxAttempts times, applying exponential backoff
// with full jitter between attempts. It returns the error from the final
// attempt if every attempt fails, or nil as soon as one succeeds.
//
// Retry respects ctx cancellation: if ctx is done before a retry sleep
// completes, Retry returns ctx.Err() immediately without a further call to
// fn.
func Retry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	cfg = cfg.withDefaults()

	var lastErr error
	delay := cfg.BaseDelay
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		sleep := jitter(delay)
		log.Warn().Str("name", cfg.Name).Int("attempt", attempt).
			Dur("backoff", sleep).Err(lastErr).Msg("retrying after failure")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return lastErr
}

// jitter returns a random duration in [d/2, d], full jitter bounded to the
// lower half so repeated backoffs never collapse to zero.
func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(rand.Int64N(int64(half)+1))
}
