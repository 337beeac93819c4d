// pkg/retry/retry.go - functions for retrying actions with exponential backoff.

package retry

import (
	"errors"
	"fmt"
	"time"

	"github.com/windowsadmins/modman/pkg/logging"
)

// NonRetryableError interface for errors that should not be retried.
// The marker method keeps plain wrapped errors from matching.
type NonRetryableError interface {
	error
	NonRetryable()
}

// nonRetryable is the concrete wrapper returned by MarkNonRetryable.
type nonRetryable struct {
	err error
}

func (n *nonRetryable) Error() string { return n.err.Error() }
func (n *nonRetryable) Unwrap() error { return n.err }
func (n *nonRetryable) NonRetryable() {}

// MarkNonRetryable wraps err so that Retry gives up immediately.
func MarkNonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &nonRetryable{err: err}
}

// RetryConfig defines the configuration for retry attempts
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	Multiplier      float64
}

// Retry retries a given function with exponential backoff
func Retry(config RetryConfig, action func() error) error {
	interval := config.InitialInterval

	var lastErr error
	for attempt := 1; attempt <= config.MaxRetries; attempt++ {
		err := action()
		if err == nil {
			return nil
		}
		lastErr = err

		// Check if this is a non-retryable error
		var nonRetryableErr NonRetryableError
		if errors.As(err, &nonRetryableErr) {
			logging.Warn("Non-retryable error encountered",
				"attempt", attempt,
				"error", err)
			return err
		}

		if attempt < config.MaxRetries {
			logging.Warn(fmt.Sprintf("Attempt %d/%d failed: %v. Retrying in %s...",
				attempt, config.MaxRetries, err, interval.String()))
		} else {
			logging.Warn(fmt.Sprintf("Attempt %d/%d failed: %v. No more retries.",
				attempt, config.MaxRetries, err))
		}

		time.Sleep(interval)
		interval = time.Duration(float64(interval) * config.Multiplier)
	}

	return fmt.Errorf("action failed after %d attempts: %w", config.MaxRetries, lastErr)
}
