package conflictcache

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// adaptiveEntry tracks the bookkeeping needed to score a cache line for
// eviction.
type adaptiveEntry struct {
	pos         int64
	accessCount int64
	lastAccess  time.Time
	score       float64
}

// AdaptiveCache is an LRU/LFU blend: eviction picks the entry with the
// lowest combined frequency/recency score rather than strictly the oldest or
// least-used entry. Weights can be retuned at runtime to favor one signal
// over the other under a shifting workload.
type AdaptiveCache struct {
	mu sync.RWMutex

	entries map[Key]*adaptiveEntry
	logger  *zap.Logger

	maxSize int

	frequencyWeight float64
	recencyWeight   float64
}

// NewAdaptiveCache constructs an AdaptiveCache bounded at maxSize entries,
// starting with the given frequency/recency blend. Every score is computed
// from the current blend, which AdjustWeights may later replace.
func NewAdaptiveCache(maxSize int, frequencyWeight, recencyWeight float64, logger *zap.Logger) *AdaptiveCache {
	return &AdaptiveCache{
		entries:         make(map[Key]*adaptiveEntry),
		logger:          logger,
		maxSize:         maxSize,
		frequencyWeight: frequencyWeight,
		recencyWeight:   recencyWeight,
	}
}

// RecordWrite implements Cache.
func (c *AdaptiveCache) RecordWrite(key Key, pos int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, found := c.entries[key]; found {
		if pos > existing.pos {
			existing.pos = pos
		}
		existing.accessCount++
		existing.lastAccess = time.Now()
		existing.score = c.calculateScore(existing)
		return
	}

	for len(c.entries) >= c.maxSize {
		c.evictLowestScore()
	}

	entry := &adaptiveEntry{
		pos:         pos,
		accessCount: 1,
		lastAccess:  time.Now(),
	}
	entry.score = c.calculateScore(entry)
	c.entries[key] = entry
}

// Lookup implements Cache.
func (c *AdaptiveCache) Lookup(key Key) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.entries[key]
	if !found {
		return 0, false
	}

	entry.accessCount++
	entry.lastAccess = time.Now()
	entry.score = c.calculateScore(entry)

	return entry.pos, true
}

// Len implements Cache.
func (c *AdaptiveCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// calculateScore blends frequency and recency into one number, higher is
// better (less likely to be evicted).
func (c *AdaptiveCache) calculateScore(entry *adaptiveEntry) float64 {
	frequencyScore := float64(entry.accessCount)
	recencyScore := time.Since(entry.lastAccess).Seconds()
	return c.frequencyWeight*frequencyScore - c.recencyWeight*recencyScore
}

// evictLowestScore removes the entry with the lowest score. Caller must hold
// the lock.
func (c *AdaptiveCache) evictLowestScore() {
	var lowestKey Key
	var lowestScore float64 = 1e9
	found := false

	for key, entry := range c.entries {
		if !found || entry.score < lowestScore {
			lowestScore = entry.score
			lowestKey = key
			found = true
		}
	}

	if found {
		delete(c.entries, lowestKey)
		c.logger.Debug("evicted conflict cache entry",
			zap.Uint32("key", uint32(lowestKey)),
			zap.Float64("score", lowestScore))
	}
}

// AdjustWeights retunes the frequency/recency blend based on how many
// entries were accessed within window of now. Call this periodically from a
// background loop, not from the allocator's critical section.
func (c *AdaptiveCache) AdjustWeights(window time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) == 0 {
		return
	}

	recentThreshold := time.Now().Add(-window)
	var recentAccesses int

	for _, entry := range c.entries {
		if entry.lastAccess.After(recentThreshold) {
			recentAccesses++
		}
	}

	hotnessRatio := float64(recentAccesses) / float64(len(c.entries))

	switch {
	case hotnessRatio > 0.7:
		c.recencyWeight = 0.7
		c.frequencyWeight = 0.3
	case hotnessRatio < 0.3:
		c.recencyWeight = 0.3
		c.frequencyWeight = 0.7
	default:
		c.recencyWeight = 0.5
		c.frequencyWeight = 0.5
	}

	c.logger.Debug("adjusted conflict cache weights",
		zap.Float64("recency_weight", c.recencyWeight),
		zap.Float64("frequency_weight", c.frequencyWeight),
		zap.Float64("hotness_ratio", hotnessRatio))
}
