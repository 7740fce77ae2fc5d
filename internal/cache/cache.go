// Package cache provides a TTL-bounded key/value memoizer used to avoid
// redundant credential chains and repeated catalog fetches. Eviction is
// lazy: an entry past its deadline is dropped on the next read. There is
// no size bound.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache memoizes producer results per key for a fixed TTL. Concurrent
// GetOrSet calls for the same missing key share a single in-flight
// producer via singleflight, so an expensive producer (a full credential
// chain) never runs twice for one key at the same time.
type Cache[V any] struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]entry[V]

	group singleflight.Group

	// now is swapped out in tests.
	now func() time.Time
}

// New creates a cache whose entries live for ttl after being stored.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// GetOrSet returns the cached value for key, or invokes producer to fill
// it. A producer error is returned to every waiting caller and nothing is
// stored, so a failed fetch is retried on the next access rather than
// poisoning the cache.
func (c *Cache[V]) GetOrSet(ctx context.Context, key string, producer func(context.Context) (V, error)) (V, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have stored the value between our miss
		// and acquiring the flight.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		value, err := producer(ctx)
		if err != nil {
			return nil, err
		}

		c.store(key, value)

		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return v.(V), nil
}

// Invalidate drops the entry for key, if present.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)

		var zero V

		return zero, false
	}

	return e.value, true
}

func (c *Cache[V]) store(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}
