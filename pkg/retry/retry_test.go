package retry

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastConfig(max int) RetryConfig {
	return RetryConfig{MaxRetries: max, InitialInterval: time.Millisecond, Multiplier: 1.0}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Retry(fastConfig(3), func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryEventuallySucceeds(t *testing.T) {
	calls := 0
	err := Retry(fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	base := errors.New("still broken")
	calls := 0
	err := Retry(fastConfig(3), func() error {
		calls++
		return base
	})
	if err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if !errors.Is(err, base) {
		t.Fatalf("final error should wrap the last failure, got %v", err)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	base := errors.New("not found")
	calls := 0
	err := Retry(fastConfig(5), func() error {
		calls++
		return MarkNonRetryable(base)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("non-retryable error was retried: %d calls", calls)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error, got %v", err)
	}
}

func TestWrappedErrorsStillRetry(t *testing.T) {
	calls := 0
	err := Retry(fastConfig(3), func() error {
		calls++
		return fmt.Errorf("request failed: %w", errors.New("connection reset"))
	})
	if err == nil {
		t.Fatal("expected failure")
	}
	if calls != 3 {
		t.Fatalf("wrapped transient error treated as non-retryable: %d calls", calls)
	}
}

func TestMarkNonRetryableNil(t *testing.T) {
	if MarkNonRetryable(nil) != nil {
		t.Fatal("MarkNonRetryable(nil) should be nil")
	}
}
