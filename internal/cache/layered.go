package cache

import "time"

// LayeredCache answers from memory and falls back to answers persisted by
// earlier runs. Disk hits are promoted to memory.
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

// NewLayeredCache creates a memory cache over a disk cache in dir
func NewLayeredCache(dir string, ttl time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(ttl),
		disk:   NewDiskCache(dir, ttl),
	}
}

// Lookup checks memory, then disk
func (c *LayeredCache) Lookup(classifier, text string) (Entry, bool) {
	if e, ok := c.memory.Lookup(classifier, text); ok {
		return e, true
	}
	e, ok := c.disk.Lookup(classifier, text)
	if ok {
		_ = c.memory.Store(classifier, text, e)
	}
	return e, ok
}

// Store writes the answer to both layers. A disk failure still leaves the
// answer in memory for the rest of the run.
func (c *LayeredCache) Store(classifier, text string, e Entry) error {
	if err := c.memory.Store(classifier, text, e); err != nil {
		return err
	}
	return c.disk.Store(classifier, text, e)
}

// Clear empties both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}
