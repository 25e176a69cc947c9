package cache

import (
	"sync"
	"sync/atomic"
)

// Cache is a generic thread-safe cache whose entries are created at most
// once per key and never replaced or evicted until Clear.
//
// It suits resources that stay referenced after creation, such as compiled
// shader variants: handing one out and later evicting it would invalidate
// the holder's handle.
//
// Cache is safe for concurrent use.
// Cache must not be copied after creation (has mutex).
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	order   []K

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates an empty cache.
func New[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get retrieves a value from the cache.
// Returns (value, true) if found, (zero, false) otherwise.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// GetOrCreate returns the cached value for key or creates it.
// create runs under the write lock, so concurrent callers for the same key
// wait for one creation. A failed creation stores nothing and the error is
// returned to the caller that ran it.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have created it while we waited for the lock.
	if v, ok := c.entries[key]; ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	c.entries[key] = v
	c.order = append(c.order, key)
	return v, nil
}

// Len returns the number of entries in the cache.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Keys returns the keys in creation order.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]K(nil), c.order...)
}

// Clear removes all entries and returns their values in creation order so
// the caller can release them.
func (c *Cache[K, V]) Clear() []V {
	c.mu.Lock()
	defer c.mu.Unlock()

	values := make([]V, 0, len(c.order))
	for _, k := range c.order {
		values = append(values, c.entries[k])
	}
	c.entries = make(map[K]V)
	c.order = nil
	return values
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Len:     c.Len(),
		Hits:    hits,
		Misses:  misses,
		HitRate: rate,
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits is the number of lookups that found an entry.
	Hits uint64
	// Misses is the number of lookups that did not.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 when there were no lookups.
	HitRate float64
}
