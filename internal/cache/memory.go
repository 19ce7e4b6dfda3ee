package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds answers for the lifetime of the process
type MemoryCache struct {
	entries *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries expire after ttl.
// A non-positive ttl keeps entries until Clear.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryCache{entries: gocache.New(ttl, 10*time.Minute)}
}

// Lookup returns the cached answer for text
func (c *MemoryCache) Lookup(classifier, text string) (Entry, bool) {
	return c.get(Key(classifier, text))
}

// Store caches a final answer
func (c *MemoryCache) Store(classifier, text string, e Entry) error {
	if !e.Cacheable() {
		return ErrNotCacheable
	}
	c.put(Key(classifier, text), e)
	return nil
}

// Clear drops every entry
func (c *MemoryCache) Clear() error {
	c.entries.Flush()
	return nil
}

func (c *MemoryCache) get(key string) (Entry, bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		return Entry{}, false
	}
	e, ok := v.(Entry)
	return e, ok
}

func (c *MemoryCache) put(key string, e Entry) {
	c.entries.SetDefault(key, e)
}
