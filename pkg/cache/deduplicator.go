package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Deduplicator collapses concurrent calls for the same key into one
type Deduplicator[V any] struct {
	group singleflight.Group
	mu    sync.Mutex
	stats DedupStats
}

// DedupStats represents deduplication statistics
type DedupStats struct {
	Requests     int64 `json:"requests"`
	Deduplicated int64 `json:"deduplicated"`
	CacheHits    int64 `json:"cache_hits"`
}

// NewDeduplicator creates a new deduplicator
func NewDeduplicator[V any]() *Deduplicator[V] {
	return &Deduplicator[V]{}
}

// ExecuteWithCache consults cache (which may be nil) before running fn and
// stores successful results. Concurrent callers sharing key run fn once. A
// caller whose ctx ends stops waiting; fn keeps running for the others.
// The boolean reports a cache hit.
func (d *Deduplicator[V]) ExecuteWithCache(
	ctx context.Context,
	key CacheKey,
	cache *LRUCache[V],
	ttl time.Duration,
	fn func() (V, error),
) (V, bool, error) {
	var zero V

	// Check cache first
	if cache != nil {
		if entry, exists := cache.Get(key); exists {
			d.updateStats(false, true)
			return entry.Value, true, nil
		}
	}

	d.updateStats(false, false)

	ch := d.group.DoChan(string(key), func() (interface{}, error) {
		value, err := fn()
		if err != nil {
			return nil, err
		}
		if cache != nil {
			cache.Set(key, value, ttl)
		}
		return value, nil
	})

	select {
	case <-ctx.Done():
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, false, res.Err
		}
		if res.Shared {
			d.updateStats(true, false)
		}
		return res.Val.(V), false, nil
	}
}

func (d *Deduplicator[V]) updateStats(deduplicated, cacheHit bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if deduplicated {
		d.stats.Deduplicated++
		return
	}
	d.stats.Requests++
	if cacheHit {
		d.stats.CacheHits++
	}
}

// Stats returns deduplication statistics across all keys
func (d *Deduplicator[V]) Stats() DedupStats {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.stats
}
