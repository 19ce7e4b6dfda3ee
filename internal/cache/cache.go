// Package cache keeps tariff codes returned by remote classifiers so the
// same goods description is only sent once per TTL.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/ppiankov/customsgate/internal/model"
)

// ErrNotCacheable is returned when storing an answer that must be retried
var ErrNotCacheable = errors.New("classification result is not cacheable")

// Entry is one classifier answer for a goods description
type Entry struct {
	Code   string                     `json:"hs_code"`
	Status model.ClassificationStatus `json:"status"`
}

// Cacheable reports whether the entry is a final answer. Service errors are
// never cached so the next run asks again.
func (e Entry) Cacheable() bool {
	return len(e.Code) == 6 && e.Status != "" && e.Status != model.StatusAPIError
}

// Cache stores classifier answers keyed by classifier name and goods text
type Cache interface {
	Lookup(classifier, text string) (Entry, bool)
	Store(classifier, text string, e Entry) error
	Clear() error
}

// Key derives a cache key from the classifier name and the goods text.
// Whitespace differences do not produce distinct keys.
func Key(classifier, text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	hash := sha256.Sum256([]byte(classifier + "\x00" + normalized))
	return "customsgate:hs:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache configured for remote classification: nil when
// disabled, memory only without a cache dir, memory over disk otherwise.
func New(cfg model.ClassifierConfig) Cache {
	if !cfg.Cache {
		return nil
	}
	if cfg.CacheDir == "" {
		return NewMemoryCache(cfg.CacheTTL)
	}
	return NewLayeredCache(cfg.CacheDir, cfg.CacheTTL)
}
