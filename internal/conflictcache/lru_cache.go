package conflictcache

import (
	lru "github.com/hashicorp/golang-lru"
)

// LRUCache is the simpler Conflict Cache backend: a strict least-recently-
// used eviction policy via the hashicorp/golang-lru package, with no
// frequency weighting. Prefer this over AdaptiveCache when the workload
// doesn't benefit from the extra bookkeeping an adaptive score needs.
type LRUCache struct {
	inner *lru.Cache
}

// NewLRUCache constructs an LRUCache bounded at maxSize entries.
func NewLRUCache(maxSize int) (*LRUCache, error) {
	inner, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRUCache{inner: inner}, nil
}

// RecordWrite implements Cache.
func (c *LRUCache) RecordWrite(key Key, pos int64) {
	if existing, found := c.inner.Get(key); found {
		if pos <= existing.(int64) {
			return
		}
	}
	c.inner.Add(key, pos)
}

// Lookup implements Cache.
func (c *LRUCache) Lookup(key Key) (int64, bool) {
	value, found := c.inner.Get(key)
	if !found {
		return 0, false
	}
	return value.(int64), true
}

// Len implements Cache.
func (c *LRUCache) Len() int {
	return c.inner.Len()
}
