// Package conflictcache implements the bounded conflict-key → global
// position mapping the allocator consults during transaction resolution.
// Arbitrary-length conflict keys are reduced to a fixed-size cache key via
// CRC32 before storage, trading a small false-collision rate for a bounded
// cache-key footprint — a collision can only make the allocator more
// conservative about aborting, never less safe, since a cache miss (or a
// collided hit belonging to a different key) is already handled by falling
// back to the per-stream back-pointer check.
package conflictcache

import (
	"github.com/ordinate-io/sequencer/internal/util"
)

// Key is the bounded, fixed-size form a conflict key is reduced to before
// insertion or lookup.
type Key uint32

// ReduceKey collapses an arbitrary-length conflict key into a bounded Key.
func ReduceKey(conflictKey []byte) Key {
	return Key(util.ComputeChecksum(conflictKey))
}

// Cache is the Conflict Cache interface from the core model: a bounded
// mapping from conflict key to the highest global position that touched it.
//
// RecordWrite is only ever called from the allocator's single-writer
// critical section. Lookup may be called concurrently with itself and with
// RecordWrite; implementations must make that safe.
type Cache interface {
	// RecordWrite inserts or raises the recorded position for key. If key is
	// not present, it is inserted at pos. If it is present, the stored value
	// is raised to pos only if pos is greater than what's stored.
	RecordWrite(key Key, pos int64)

	// Lookup returns the last recorded position for key, and whether it was
	// found. A false found is ambiguous — key may never have been written,
	// or it may have been evicted — and callers must treat it as consistent
	// with any snapshot (never abort on a miss alone).
	Lookup(key Key) (pos int64, found bool)

	// Len reports the current number of entries, for metrics and tests.
	Len() int
}
