// Package cache memoizes decoded-and-scaled record bundles.
//
// The analysis engine is referentially transparent: the same CFG bytes,
// DAT bytes and station label always produce the same bundle. The cache
// exploits that with an explicit content-addressed mapping, a SHA-256
// over the inputs, bounded by an LRU eviction policy instead of growing
// without limit.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"ctview/pkg/contracts/domain"
)

// Key derives the content address of a record bundle from its inputs.
func Key(cfg, dat []byte, station string) string {
	h := sha256.New()
	h.Write(cfg)
	h.Write(dat)
	h.Write([]byte(station))
	return hex.EncodeToString(h.Sum(nil))
}

type entry struct {
	key    string
	bundle *domain.AnalysisBundle
}

// RecordCache is a bounded LRU cache of analysis bundles keyed by
// content address. Safe for concurrent use.
type RecordCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	hitCount   int64
	missCount  int64
}

// NewRecordCache creates a cache holding at most maxEntries bundles.
// A non-positive bound disables storage entirely.
func NewRecordCache(maxEntries int) *RecordCache {
	return &RecordCache{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

// Get retrieves the bundle for key, marking it most recently used.
func (c *RecordCache) Get(key string) (*domain.AnalysisBundle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.missCount++
		return nil, false
	}
	c.order.MoveToFront(el)
	c.hitCount++
	return el.Value.(*entry).bundle, true
}

// Set stores a bundle under key, evicting the least recently used entry
// when the cache is full.
func (c *RecordCache) Set(key string, bundle *domain.AnalysisBundle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries <= 0 {
		return
	}
	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).bundle = bundle
		c.order.MoveToFront(el)
		return
	}
	for c.order.Len() >= c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*entry).key)
	}
	c.entries[key] = c.order.PushFront(&entry{key: key, bundle: bundle})
}

// Len returns the number of cached bundles.
func (c *RecordCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns cache statistics for health and metrics endpoints.
func (c *RecordCache) Stats() map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hitCount + c.missCount
	hitRatio := float64(0)
	if total > 0 {
		hitRatio = float64(c.hitCount) / float64(total)
	}
	return map[string]interface{}{
		"entries":    c.order.Len(),
		"max_size":   c.maxEntries,
		"hit_count":  c.hitCount,
		"miss_count": c.missCount,
		"hit_ratio":  hitRatio,
	}
}
