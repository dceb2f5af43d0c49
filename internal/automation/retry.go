package automation

import (
	"context"
	"math"
	"time"
)

// RetryStrategy defines bounded exponential backoff for external calls.
// With the defaults a failing call is attempted once plus three retries,
// delayed 1s, 2s, 4s.
type RetryStrategy struct {
	MaxRetries  int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration

	// sleep is swappable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryStrategy creates a strategy with the default bounds.
func NewRetryStrategy() *RetryStrategy {
	return &RetryStrategy{
		MaxRetries:  3,
		BaseBackoff: 1 * time.Second,
		MaxBackoff:  8 * time.Second,
	}
}

// Backoff returns the delay before retry number retry (1-based):
// 2^(n-1) * BaseBackoff, capped at MaxBackoff.
func (s *RetryStrategy) Backoff(retry int) time.Duration {
	if retry <= 1 {
		return s.BaseBackoff
	}
	backoff := time.Duration(math.Pow(2, float64(retry-1))) * s.BaseBackoff
	if backoff > s.MaxBackoff {
		backoff = s.MaxBackoff
	}
	return backoff
}

// Do runs fn, retrying on errors the classifier marks retryable. A
// non-retryable error propagates immediately; exhausting retries propagates
// the final error.
func (s *RetryStrategy) Do(ctx context.Context, retryable func(error) bool, fn func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !retryable(err) || attempt >= s.MaxRetries {
			return err
		}
		if sleepErr := s.wait(ctx, s.Backoff(attempt+1)); sleepErr != nil {
			return sleepErr
		}
	}
}

func (s *RetryStrategy) wait(ctx context.Context, d time.Duration) error {
	if s.sleep != nil {
		return s.sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
