package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffPolicyDelaysGrowAndCap(t *testing.T) {
	p := &BackoffPolicy{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     400 * time.Millisecond,
		Multiplier:   2.0,
		MaxRetries:   10,
	}

	d0, ok := p.NextDelay(0, errors.New("x"))
	require.True(t, ok)
	assert.Equal(t, 100*time.Millisecond, d0)

	d1, ok := p.NextDelay(1, errors.New("x"))
	require.True(t, ok)
	assert.Equal(t, 200*time.Millisecond, d1)

	d5, ok := p.NextDelay(5, errors.New("x"))
	require.True(t, ok)
	assert.Equal(t, 400*time.Millisecond, d5, "delay caps at MaxDelay")
}

func TestBackoffPolicyStopsAfterMaxRetries(t *testing.T) {
	p := &BackoffPolicy{InitialDelay: time.Millisecond, MaxDelay: time.Second, Multiplier: 2, MaxRetries: 3}
	_, ok := p.NextDelay(2, errors.New("x"))
	assert.True(t, ok)
	_, ok = p.NextDelay(3, errors.New("x"))
	assert.False(t, ok)
}

func TestBackoffPolicyJitterStaysBounded(t *testing.T) {
	p := &BackoffPolicy{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		MaxRetries:   5,
		Jitter:       true,
		JitterFactor: 0.3,
	}
	for i := 0; i < 100; i++ {
		d, ok := p.NextDelay(0, errors.New("x"))
		require.True(t, ok)
		assert.GreaterOrEqual(t, d, 70*time.Millisecond)
		assert.LessOrEqual(t, d, 130*time.Millisecond)
	}
}

func TestBackoffPolicyNonRetryableError(t *testing.T) {
	permanent := errors.New("syntax error")
	p := DefaultBackoff()
	p.Retryable = func(err error) bool { return !errors.Is(err, permanent) }

	_, ok := p.NextDelay(0, permanent)
	assert.False(t, ok)
	_, ok = p.NextDelay(0, errors.New("connection reset"))
	assert.True(t, ok)
}

func TestWithRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), DefaultBackoff(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecoversFromTransientFailure(t *testing.T) {
	p := &BackoffPolicy{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1, MaxRetries: 5}
	calls := 0
	err := WithRetry(context.Background(), p, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryGivesUpAndReturnsLastError(t *testing.T) {
	p := &BackoffPolicy{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1, MaxRetries: 2}
	calls := 0
	lastErr := errors.New("still down")
	err := WithRetry(context.Background(), p, func(ctx context.Context) error {
		calls++
		return lastErr
	})
	assert.ErrorIs(t, err, lastErr)
	assert.Equal(t, 3, calls, "one initial try plus two retries")
}

func TestWithRetryNilPolicyDoesNotRetry(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), nil, func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &BackoffPolicy{InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1, MaxRetries: 5}

	done := make(chan error, 1)
	go func() {
		done <- WithRetry(ctx, p, func(ctx context.Context) error {
			return errors.New("down")
		})
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("retry loop did not observe cancellation")
	}
}

func TestConstraintError(t *testing.T) {
	err := error(&ConstraintError{Entity: "web_log_user", Constraint: "authored_content", Detail: "user has 3 posts"})
	assert.True(t, IsConstraint(err))
	assert.True(t, IsConstraint(errors.Join(errors.New("wrap"), err)))
	assert.False(t, IsConstraint(errors.New("plain")))
	assert.Contains(t, err.Error(), "authored_content")
}
