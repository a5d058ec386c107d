// Package retry re-executes fallible operations with exponential backoff.
package retry

import (
	"context"
	"time"
)

// Config holds retry configuration.
type Config struct {
	// MaxAttempts is the total number of times the operation may run.
	MaxAttempts int
	// InitialDelay is the wait before the second attempt. The wait doubles
	// for each attempt after that, with no jitter.
	InitialDelay time.Duration
}

// DefaultConfig returns the configuration used at acquisition call sites:
// three attempts with delays of 500ms and 1s between them.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
	}
}

// ErrorClassifier reports whether an error is worth retrying. A nil
// classifier retries everything.
type ErrorClassifier func(error) bool

// Do executes fn up to cfg.MaxAttempts times. It returns the first success,
// or the last observed error once the attempt budget is exhausted; earlier
// errors are discarded. There is no delay after the final attempt. Do knows
// nothing about fn; the classifier is the only hook for marking an error
// permanent.
func Do(ctx context.Context, cfg Config, classifier ErrorClassifier, fn func(context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if classifier != nil && !classifier(err) {
			return err
		}
	}

	return lastErr
}
