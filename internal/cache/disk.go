package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskCache persists answers across runs, one JSON file per key
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates a disk cache under dir. A non-positive ttl means
// entries never expire.
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{dir: dir, ttl: ttl}
}

type diskEntry struct {
	Classifier string    `json:"classifier"`
	Text       string    `json:"goods_description"`
	Entry      Entry     `json:"entry"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
}

// Lookup returns the persisted answer for text. Expired, unreadable or
// colliding files are treated as misses.
func (c *DiskCache) Lookup(classifier, text string) (Entry, bool) {
	path := c.path(Key(classifier, text))

	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, false
	}

	var de diskEntry
	if err := json.Unmarshal(data, &de); err != nil {
		return Entry{}, false
	}
	if !de.ExpiresAt.IsZero() && time.Now().After(de.ExpiresAt) {
		_ = os.Remove(path)
		return Entry{}, false
	}
	if de.Classifier != classifier || de.Text != normalize(text) || !de.Entry.Cacheable() {
		return Entry{}, false
	}
	return de.Entry, true
}

// Store persists a final answer
func (c *DiskCache) Store(classifier, text string, e Entry) error {
	if !e.Cacheable() {
		return ErrNotCacheable
	}

	de := diskEntry{Classifier: classifier, Text: normalize(text), Entry: e}
	if c.ttl > 0 {
		de.ExpiresAt = time.Now().Add(c.ttl).UTC()
	}

	data, err := json.Marshal(de)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Write then rename so concurrent workers never read a partial entry
	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(Key(classifier, text))); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

// Clear removes the cache directory
func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, strings.ReplaceAll(key, ":", "_")+".json")
}

func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
