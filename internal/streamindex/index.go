// Package streamindex maintains the two parallel per-stream maps the
// allocator keeps in step with each grant: the stream tail map (how many
// positions a stream has locally been given) and the back-pointer map (the
// highest global position touching a stream). Both maps are updated together
// within one grant so external observers never see one without the other.
package streamindex

import (
	"sync"

	"github.com/ordinate-io/sequencer/internal/model"
)

// Absent is returned by the query methods when a stream has never been seen.
const Absent int64 = -1

// Index holds the Stream Tail Map and Back-pointer Map. All writes happen
// from the allocator's single-writer critical section; reads may come from
// the query path concurrently, so access is still guarded by a mutex to keep
// the two maps from being observed in a torn state.
type Index struct {
	mu   sync.RWMutex
	local map[model.StreamID]int64
	back  map[model.StreamID]int64
}

// New constructs an empty Index.
func New() *Index {
	return &Index{
		local: make(map[model.StreamID]int64),
		back:  make(map[model.StreamID]int64),
	}
}

// QueryLocal returns local[streamID], or Absent if the stream has never been
// touched.
func (idx *Index) QueryLocal(streamID model.StreamID) int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if v, ok := idx.local[streamID]; ok {
		return v
	}
	return Absent
}

// QueryBack returns back[streamID], or Absent if the stream has never been
// touched.
func (idx *Index) QueryBack(streamID model.StreamID) int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if v, ok := idx.back[streamID]; ok {
		return v
	}
	return Absent
}

// UpdateBackPointer sets back[streamID] := max(back[streamID], newGlobalPos)
// and returns the previous value (or Absent). It is split out from
// AdvanceLocalTail because the (overwrite, replexOverwrite) flag pair decides
// independently whether the local tail advances, while the back-pointer
// always advances on a grant.
func (idx *Index) UpdateBackPointer(streamID model.StreamID, newGlobalPos int64) (previous int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	prev, ok := idx.back[streamID]
	if !ok {
		prev = Absent
	}

	if newGlobalPos > prev {
		idx.back[streamID] = newGlobalPos
	} else {
		idx.back[streamID] = prev
	}

	return prev
}

// AdvanceLocalTail sets local[streamID] := prev + n and returns the new
// value. Call only when the flag table says the local tail should advance.
func (idx *Index) AdvanceLocalTail(streamID model.StreamID, n uint32) (newLocalTail int64) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	prev, ok := idx.local[streamID]
	if !ok {
		prev = Absent
	}

	newLocalTail = prev + int64(n)
	idx.local[streamID] = newLocalTail
	return newLocalTail
}
