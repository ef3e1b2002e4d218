package limiter

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Name        string                             `json:"name"`
	MaxRequests uint32                             `json:"max_requests"`
	Interval    time.Duration                      `json:"interval"`
	Timeout     time.Duration                      `json:"timeout"`
	ReadyToTrip func(counts gobreaker.Counts) bool `json:"-"`
}

// DefaultCircuitBreakerConfig returns a default circuit breaker configuration
func DefaultCircuitBreakerConfig(name string) *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Open after 3 consecutive failures or >50% of at least 5 requests
			return counts.ConsecutiveFailures >= 3 ||
				(counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5)
		},
	}
}

// Breaker guards calls to a flaky dependency
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewBreaker creates a breaker; onStateChange may be nil
func NewBreaker(config *CircuitBreakerConfig, onStateChange func(name string, from, to string)) *Breaker {
	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: config.ReadyToTrip,
	}
	if onStateChange != nil {
		settings.OnStateChange = func(name string, from gobreaker.State, to gobreaker.State) {
			onStateChange(name, from.String(), to.String())
		}
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn through the breaker. An open breaker fails fast with
// gobreaker.ErrOpenState wrapped in the returned error.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err != nil {
		return fmt.Errorf("circuit breaker %s: %w", b.cb.Name(), err)
	}
	return nil
}

// State returns the current state name
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// IsOpen reports whether calls currently fail fast
func (b *Breaker) IsOpen() bool {
	return b.cb.State() == gobreaker.StateOpen
}

// GetStats returns breaker counters
func (b *Breaker) GetStats() map[string]interface{} {
	counts := b.cb.Counts()
	return map[string]interface{}{
		"name":                 b.cb.Name(),
		"state":                b.cb.State().String(),
		"requests":             counts.Requests,
		"total_success":        counts.TotalSuccesses,
		"total_failures":       counts.TotalFailures,
		"consecutive_failures": counts.ConsecutiveFailures,
	}
}
