package limiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(retries int) *RetryManager {
	return NewRetryManager(&RetryConfig{
		MaxRetries:    retries,
		BaseDelay:     time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	})
}

func TestRetrySucceedsEventually(t *testing.T) {
	attempts := 0
	err := fastRetry(3).Execute(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryGivesUp(t *testing.T) {
	attempts := 0
	boom := errors.New("persistent")
	err := fastRetry(2).Execute(context.Background(), func(context.Context) error {
		attempts++
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, 3, attempts)
}

func TestRetrySkipsContextErrors(t *testing.T) {
	attempts := 0
	err := fastRetry(5).Execute(context.Background(), func(context.Context) error {
		attempts++
		return context.DeadlineExceeded
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, attempts)
}

func TestCalculateDelayCapped(t *testing.T) {
	rm := NewRetryManager(&RetryConfig{BaseDelay: time.Second, MaxDelay: 3 * time.Second, BackoffFactor: 10})
	assert.Equal(t, time.Second, rm.calculateDelay(0))
	assert.Equal(t, 3*time.Second, rm.calculateDelay(4))

	jittered := NewRetryManager(&RetryConfig{BaseDelay: time.Second, MaxDelay: time.Minute, BackoffFactor: 2, Jitter: true})
	d := jittered.calculateDelay(1)
	assert.GreaterOrEqual(t, d, 1500*time.Millisecond)
	assert.LessOrEqual(t, d, 2500*time.Millisecond)
}
