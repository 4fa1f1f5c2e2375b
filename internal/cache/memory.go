package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// MemoryCache is a process-wide TTL cache. Expired entries are evicted
// lazily on read rather than by a background sweeper; the entry count stays
// bounded by the small, fixed set of upstream keys a deployment sees.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	group   singleflight.Group
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, ErrKeyNotFound
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Recheck under the write lock; a concurrent Set may have refreshed it.
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, ErrKeyNotFound
	}
	return entry.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{value: data, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

// GetOrSet collapses concurrent upstream fetches for the same key through
// singleflight, so a burst of requests for one location issues one call.
func (c *MemoryCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (interface{}, error)) ([]byte, error) {
	if data, err := c.Get(ctx, key); err == nil {
		return data, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if data, err := c.Get(ctx, key); err == nil {
			return data, nil
		}
		value, err := fn()
		if err != nil {
			return nil, err
		}
		data, err := encode(value)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = memoryEntry{value: data, expiresAt: c.now().Add(ttl)}
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Clear drops all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}

// Stats reports entry counts for the metrics collector.
func (c *MemoryCache) Stats() (total, active int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.now()
	total = len(c.entries)
	for _, entry := range c.entries {
		if now.Before(entry.expiresAt) {
			active++
		}
	}
	return total, active
}

func (c *MemoryCache) Close() error {
	c.Clear()
	return nil
}

func encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal value: %w", err)
		}
		return data, nil
	}
}
