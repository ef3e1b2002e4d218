package limiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultRequestsPerMinute = 60
	defaultIdleTimeout       = 10 * time.Minute
)

// RateLimitConfig configures per-client request limits
type RateLimitConfig struct {
	RequestsPerMinute float64       `json:"requests_per_minute"`
	Burst             int           `json:"burst"`
	IdleTimeout       time.Duration `json:"idle_timeout"` // clients unseen this long are forgotten
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages one token bucket per client key
type RateLimiter struct {
	config    RateLimitConfig
	limiters  map[string]*clientLimiter
	lastSweep time.Time
	evicted   int64
	mu        sync.Mutex

	now func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = defaultRequestsPerMinute
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = defaultIdleTimeout
	}
	return &RateLimiter{
		config:    config,
		limiters:  make(map[string]*clientLimiter),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// GetLimiter returns or creates the limiter for a client
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	if cl, exists := rl.limiters[key]; exists {
		cl.lastSeen = now
		return cl.limiter
	}

	cl := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Limit(rl.config.RequestsPerMinute/60.0), rl.config.Burst),
		lastSeen: now,
	}
	rl.limiters[key] = cl
	return cl.limiter
}

// sweep drops idle clients at most once per IdleTimeout. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.config.IdleTimeout {
		return
	}
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastSeen) >= rl.config.IdleTimeout {
			delete(rl.limiters, key)
			rl.evicted++
		}
	}
	rl.lastSweep = now
}

// Allow checks if the request is allowed without waiting
func (rl *RateLimiter) Allow(key string) bool {
	return rl.GetLimiter(key).Allow()
}

// Stats returns the limits and how many clients are tracked
func (rl *RateLimiter) Stats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"requests_per_minute": rl.config.RequestsPerMinute,
		"burst":               rl.config.Burst,
		"clients":             len(rl.limiters),
		"evicted":             rl.evicted,
	}
}
