package store

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy decides whether and when a transient store failure is retried.
type RetryPolicy interface {
	// NextDelay returns the delay before the next retry attempt.
	// attempt is 0-based (0 for the first retry, 1 for the second, etc.).
	// Returns the delay duration and whether to keep retrying.
	NextDelay(attempt int, lastErr error) (time.Duration, bool)
}

// BackoffPolicy implements exponential backoff with jitter.
type BackoffPolicy struct {
	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	Multiplier float64

	// MaxRetries is the maximum number of retry attempts (0 for none).
	MaxRetries int

	// Jitter adds randomness to the delay to avoid thundering herd.
	Jitter bool

	// JitterFactor is the maximum jitter as a fraction of the delay
	// (0.0 to 1.0).
	JitterFactor float64

	// Retryable reports whether an error is worth retrying at all; nil
	// means every error is.
	Retryable func(err error) bool
}

// DefaultBackoff returns the policy the adapters use for transient failures:
// a handful of quick attempts, suited to dropped connections and leader
// elections rather than extended outages.
func DefaultBackoff() *BackoffPolicy {
	return &BackoffPolicy{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		MaxRetries:   4,
		Jitter:       true,
		JitterFactor: 0.3,
	}
}

// NextDelay implements RetryPolicy.
func (p *BackoffPolicy) NextDelay(attempt int, lastErr error) (time.Duration, bool) {
	if p.Retryable != nil && !p.Retryable(lastErr) {
		return 0, false
	}
	if p.MaxRetries <= 0 || attempt >= p.MaxRetries {
		return 0, false
	}

	delay := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}

	if p.Jitter && p.JitterFactor > 0 {
		//nolint:gosec // math/rand is fine for jitter, not security-critical
		jitter := delay * p.JitterFactor * (2*rand.Float64() - 1)
		delay += jitter
		if delay < 0 {
			delay = float64(p.InitialDelay)
		}
	}

	return time.Duration(delay), true
}

// WithRetry runs op, retrying per the policy when it fails. The operation
// must be safe to repeat; all contract operations are single statements or
// idempotent syncs, so a retry never double-applies a change. The last error
// is returned when the policy gives up. A nil policy means no retries.
func WithRetry(ctx context.Context, policy RetryPolicy, op func(ctx context.Context) error) error {
	err := op(ctx)
	if err == nil || policy == nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		delay, again := policy.NextDelay(attempt, err)
		if !again {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if err = op(ctx); err == nil {
			return nil
		}
	}
}
