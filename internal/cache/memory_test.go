package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "value", time.Hour))

	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	// Advance past the TTL; the entry must read as absent and be evicted.
	now = now.Add(time.Hour + time.Second)

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	total, _ := c.Stats()
	assert.Equal(t, 0, total)
}

func TestMemoryCacheMissingKey(t *testing.T) {
	c := NewMemoryCache()
	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCacheMarshalsStructs(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	type payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.Set(ctx, "k", payload{Name: "Kyoto"}, time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Kyoto"}`, string(got))
}

func TestMemoryCacheGetOrSetFetchesOnce(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []byte("fetched"), nil
	}

	for i := 0; i < 3; i++ {
		got, err := c.GetOrSet(ctx, "k", time.Minute, fetch)
		require.NoError(t, err)
		assert.Equal(t, []byte("fetched"), got)
	}
	assert.Equal(t, 1, calls)
}

func TestMemoryCacheGetOrSetDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return nil, assert.AnError
	}

	_, err := c.GetOrSet(ctx, "k", time.Minute, fetch)
	require.Error(t, err)
	_, err = c.GetOrSet(ctx, "k", time.Minute, fetch)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestMemoryCacheGetOrSetCollapsesConcurrentFetches(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var mu sync.Mutex
	calls := 0
	release := make(chan struct{})
	fetch := func() (interface{}, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		<-release
		return []byte("once"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.GetOrSet(ctx, "k", time.Minute, fetch)
			assert.NoError(t, err)
			assert.Equal(t, []byte("once"), got)
		}()
	}

	// Give the goroutines time to pile onto the same key.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}

func TestMemoryCacheDelAndClear(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "b", "2", time.Minute))

	require.NoError(t, c.Del(ctx, "a"))
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	c.Clear()
	total, active := c.Stats()
	assert.Equal(t, 0, total)
	assert.Equal(t, 0, active)
}
