package cache

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUCache implements an LRU cache with optional TTL support
type LRUCache[V any] struct {
	cache    *lru.Cache[CacheKey, *CacheEntry[V]]
	config   *CacheConfig
	stats    *CacheStats
	mu       sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewLRUCache creates a new LRU cache
func NewLRUCache[V any](config *CacheConfig) (*LRUCache[V], error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	c := &LRUCache[V]{
		config:   config,
		stats:    &CacheStats{MaxSize: config.MaxSize},
		stopChan: make(chan struct{}),
	}

	cache, err := lru.New[CacheKey, *CacheEntry[V]](config.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	c.cache = cache

	// Start cleanup goroutine
	if config.DefaultTTL > 0 && config.CleanupInterval > 0 {
		go c.cleanup()
	}

	return c, nil
}

// Get retrieves a value from the cache
func (c *LRUCache[V]) Get(key CacheKey) (*CacheEntry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.cache.Get(key)
	if !exists {
		c.stats.Misses++
		return nil, false
	}

	// Check if expired
	if entry.IsExpired() {
		c.cache.Remove(key)
		c.stats.Expirations++
		c.stats.Misses++
		return nil, false
	}

	// Update access info
	entry.Touch()
	c.stats.Hits++
	return entry, true
}

// Set stores a value in the cache. A non-positive ttl uses the default.
func (c *LRUCache[V]) Set(key CacheKey, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}

	now := time.Now()
	entry := &CacheEntry[V]{
		Value:        value,
		CreatedAt:    now,
		LastAccessed: now,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	if c.cache.Add(key, entry) {
		c.stats.Evictions++
	}
	c.stats.Size = c.cache.Len()
}

// Delete removes a value from the cache
func (c *LRUCache[V]) Delete(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Remove(key)
	c.stats.Size = c.cache.Len()
}

// Stats returns cache statistics
func (c *LRUCache[V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := *c.stats
	stats.Size = c.cache.Len()
	stats.CalculateHitRate()
	return stats
}

// Len returns the number of items in the cache
func (c *LRUCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cache.Len()
}

// Close stops the cleanup goroutine
func (c *LRUCache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

// cleanup periodically removes expired entries
func (c *LRUCache[V]) cleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.stopChan:
			return
		}
	}
}

// cleanupExpired removes expired entries
func (c *LRUCache[V]) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiredCount := 0
	for _, key := range c.cache.Keys() {
		if entry, exists := c.cache.Peek(key); exists && entry.IsExpired() {
			c.cache.Remove(key)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.stats.Expirations += int64(expiredCount)
		c.stats.Size = c.cache.Len()
	}
}
