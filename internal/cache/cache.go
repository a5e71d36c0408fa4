// Package cache holds fetched asset pages in memory for the lifetime of a
// view coordinator.
//
// Entries are keyed by model.PageQuery.Key and never expire or get evicted;
// the working set of one browsing session is assumed small.
package cache

import (
	"sync"

	"github.com/user/assetview/internal/model"
)

// ResultCache maps a page query fingerprint to a fetched page.
// Safe for concurrent use. Writing an existing key replaces the entry.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]model.CacheEntry
}

// New creates an empty result cache.
func New() *ResultCache {
	return &ResultCache{entries: make(map[string]model.CacheEntry)}
}

// Get returns the entry stored for key, if any.
func (c *ResultCache) Get(key string) (model.CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Put stores entry under key. The record slice is copied so later writes to
// the caller's slice do not reach the cache.
func (c *ResultCache) Put(key string, entry model.CacheEntry) {
	records := make([]model.Asset, len(entry.Records))
	copy(records, entry.Records)
	entry.Records = records
	if entry.TotalPages < 1 {
		entry.TotalPages = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
}

// Len returns the number of cached pages.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
