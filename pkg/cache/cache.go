// Package cache provides a bounded, TTL-aware LRU cache for extraction
// results so repeat lookups of popular cities skip the external services.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// entry wraps a cached value with its expiry deadline.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is a thread-safe LRU cache whose entries also expire after a
// fixed TTL. Expired entries are removed lazily on access.
type TTLCache[V any] struct {
	entries *lru.Cache[string, entry[V]]
	ttl     time.Duration
}

// New creates a TTLCache holding at most size entries, each valid for ttl.
func New[V any](size int, ttl time.Duration) (*TTLCache[V], error) {
	entries, err := lru.New[string, entry[V]](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache[V]{
		entries: entries,
		ttl:     ttl,
	}, nil
}

// Get retrieves a value if present and unexpired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		c.entries.Remove(key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value under key with the configured TTL.
func (c *TTLCache[V]) Set(key string, value V) {
	c.entries.Add(key, entry[V]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Len returns the number of entries currently held, including any that
// have expired but not yet been evicted.
func (c *TTLCache[V]) Len() int {
	return c.entries.Len()
}

// Purge removes all entries.
func (c *TTLCache[V]) Purge() {
	c.entries.Purge()
}
