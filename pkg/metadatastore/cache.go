package metadatastore

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// searchCacheEntry is the value stored per query in the LRU (spec.md §3
// "Search cache entry").
type searchCacheEntry struct {
	Results   []string
	Timestamp time.Time
}

// searchCache wraps a bounded LRU of SEARCH results, invalidated wholesale
// on any file create/delete (spec.md §3, §8 invariant 10).
type searchCache struct {
	mu  sync.Mutex
	lru *lru.Cache
}

func newSearchCache(capacity int) *searchCache {
	c, err := lru.New(capacity)
	if err != nil {
		// Only returns an error for capacity <= 0, already guarded by the
		// caller in Store.New.
		panic(err)
	}
	return &searchCache{lru: c}
}

func (c *searchCache) get(query string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(query)
	if !ok {
		return nil, false
	}
	entry := v.(searchCacheEntry)
	return entry.Results, true
}

func (c *searchCache) put(query string, results []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(query, searchCacheEntry{Results: results, Timestamp: time.Now()})
}

func (c *searchCache) invalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

func (c *searchCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
