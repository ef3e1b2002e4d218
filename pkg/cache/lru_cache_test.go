package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUCache(t *testing.T) {
	cache, err := NewLRUCache[string](&CacheConfig{MaxSize: 10})
	require.NoError(t, err)
	defer cache.Close()

	key := CacheKey("test-key")
	cache.Set(key, "value", 0)

	entry, exists := cache.Get(key)
	require.True(t, exists)
	assert.Equal(t, "value", entry.Value)
	assert.Equal(t, 1, entry.AccessCount)
	assert.True(t, entry.ExpiresAt.IsZero())

	_, exists = cache.Get("missing")
	assert.False(t, exists)

	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0.5, stats.HitRate)
	assert.Equal(t, 1, stats.Size)
}

func TestLRUCacheEviction(t *testing.T) {
	cache, err := NewLRUCache[int](&CacheConfig{MaxSize: 3})
	require.NoError(t, err)
	defer cache.Close()

	for i := 0; i < 5; i++ {
		cache.Set(CacheKey(fmt.Sprintf("k%d", i)), i, 0)
	}

	assert.Equal(t, 3, cache.Len())
	_, exists := cache.Get("k0")
	assert.False(t, exists)
	_, exists = cache.Get("k4")
	assert.True(t, exists)
	assert.Equal(t, int64(2), cache.Stats().Evictions)
}

func TestLRUCacheTTL(t *testing.T) {
	cache, err := NewLRUCache[int](&CacheConfig{MaxSize: 10, DefaultTTL: 20 * time.Millisecond, CleanupInterval: time.Hour})
	require.NoError(t, err)
	defer cache.Close()

	cache.Set("short", 1, 0)
	cache.Set("long", 2, time.Hour)
	time.Sleep(40 * time.Millisecond)

	_, exists := cache.Get("short")
	assert.False(t, exists)
	_, exists = cache.Get("long")
	assert.True(t, exists)
	assert.Equal(t, int64(1), cache.Stats().Expirations)
}

func TestLRUCacheCleanupExpired(t *testing.T) {
	cache, err := NewLRUCache[int](&CacheConfig{MaxSize: 10, DefaultTTL: 10 * time.Millisecond})
	require.NoError(t, err)
	defer cache.Close()

	cache.Set("a", 1, 0)
	cache.Set("b", 2, 0)
	time.Sleep(20 * time.Millisecond)
	cache.cleanupExpired()

	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, int64(2), cache.Stats().Expirations)
}

func TestLRUCacheDelete(t *testing.T) {
	cache, err := NewLRUCache[int](nil)
	require.NoError(t, err)
	defer cache.Close()

	cache.Set("a", 1, 0)
	cache.Delete("a")
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, int64(0), cache.Stats().Evictions)
}

func TestLRUCacheInvalidSize(t *testing.T) {
	_, err := NewLRUCache[int](&CacheConfig{MaxSize: 0})
	require.Error(t, err)
}

func TestGenerateKey(t *testing.T) {
	type params struct {
		A int
		B float64
	}
	k1, err := GenerateKey(params{1, 0.5})
	require.NoError(t, err)
	k2, err := GenerateKey(params{1, 0.5})
	require.NoError(t, err)
	k3, err := GenerateKey(params{2, 0.5})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Len(t, string(k1), 64)

	_, err = GenerateKey(func() {})
	assert.Error(t, err)
}
