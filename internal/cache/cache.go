package cache

import (
	"context"
	"fmt"
	"time"
)

// ErrKeyNotFound is returned by Get when a key is absent or expired.
var ErrKeyNotFound = fmt.Errorf("key not found")

// Cache is the TTL cache consumed by the fact agents. Caching is a pure
// optimization: every value stored under a key is an idempotent function of
// that key, so concurrent writers for the same key race benignly.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error

	// GetOrSet returns the cached value for key, or runs fn once, stores the
	// result for ttl and returns it. Implementations collapse concurrent
	// callers for the same key.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() (interface{}, error)) ([]byte, error)

	Close() error
}
