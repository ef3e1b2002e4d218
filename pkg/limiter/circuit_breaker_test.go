package limiter

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	b := NewBreaker(DefaultCircuitBreakerConfig("store"), func(name, from, to string) {
		transitions = append(transitions, from+"->"+to)
	})

	boom := errors.New("disk full")
	for i := 0; i < 3; i++ {
		err := b.Execute(func() error { return boom })
		require.ErrorIs(t, err, boom)
	}

	assert.True(t, b.IsOpen())
	assert.Equal(t, []string{"closed->open"}, transitions)

	called := false
	err := b.Execute(func() error { called = true; return nil })
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.False(t, called)
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("store")
	cfg.Timeout = 20 * time.Millisecond
	b := NewBreaker(cfg, nil)

	for i := 0; i < 3; i++ {
		_ = b.Execute(func() error { return errors.New("x") })
	}
	require.True(t, b.IsOpen())

	time.Sleep(40 * time.Millisecond)
	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, "closed", b.State())
}

func TestBreakerStats(t *testing.T) {
	b := NewBreaker(DefaultCircuitBreakerConfig("store"), nil)
	require.NoError(t, b.Execute(func() error { return nil }))
	_ = b.Execute(func() error { return errors.New("x") })

	stats := b.GetStats()
	assert.Equal(t, "store", stats["name"])
	assert.Equal(t, uint32(2), stats["requests"])
	assert.Equal(t, uint32(1), stats["total_failures"])
}
