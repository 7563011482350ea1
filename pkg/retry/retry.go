// Package retry wraps persistence calls in exponential backoff. Each attempt
// checks the context first, so a caller that has navigated away simply
// cancels and the remaining attempts are abandoned.
package retry

import (
	"context"
	"errors"
	"time"
)

type Config struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Attempts: 3,
		Delay:    200 * time.Millisecond,
		MaxDelay: 5 * time.Second,
	}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks an error as not worth retrying. Do stops immediately and
// returns the wrapped error.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do runs fn up to cfg.Attempts times, doubling the delay between attempts.
// The last error is returned when every attempt fails.
func Do(ctx context.Context, cfg Config, fn func(context.Context) error) error {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}

	delay := cfg.Delay
	var err error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			delay *= 2
			if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
