package cache

import (
	"context"
	"sync"
	"time"

	"github.com/boycottwatch/backend/internal/domain"
)

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	Value      domain.EnrichmentResult
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache with TTL support. Capacity is
// unbounded: the catalog is small and entries expire, so there is no eviction
// policy. That is a known scaling limit, not an oversight.
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]cacheItem),
	}

	// Sweep expired entries every 10 minutes. Correctness does not depend on
	// the sweep; Get evicts lazily.
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a value from the cache. An expired entry is treated as a
// miss and removed on access.
func (c *MemoryCache) Get(ctx context.Context, key string) (*domain.EnrichmentResult, error) {
	c.mutex.RLock()
	item, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, domain.ErrCacheMiss
	}

	if time.Now().After(item.Expiration) {
		c.mutex.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, ok := c.data[key]; ok && time.Now().After(current.Expiration) {
			delete(c.data, key)
		}
		c.mutex.Unlock()
		return nil, domain.ErrCacheMiss
	}

	value := item.Value
	return &value, nil
}

// Set stores a value in the cache with TTL, overwriting any existing entry
// for the same key.
func (c *MemoryCache) Set(ctx context.Context, key string, value *domain.EnrichmentResult, ttl time.Duration) error {
	if value == nil {
		return domain.ErrInvalidRequest
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheItem{
		Value:      *value,
		Expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.Expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}
