/*
Copyright (C) 2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package segstore

import (
	"fmt"

	"github.com/launix-de/cachesim/internal/simerrors"
)

// Store is a fixed-size pool of Segment objects with a free list. It
// guarantees pointer stability for the lifetime of the cache: segments are
// never moved or destroyed once constructed, only reset and recycled.
// Ownership follows the "mixed ownership" design note — Store owns every
// Segment; policies, indexes, and active tables only ever hold the
// *Segment reference, never a copy.
type Store struct {
	all  []*Segment
	free []*Segment
}

// NewStore preallocates n segments of the given block capacity each and
// places all of them on the free list.
func NewStore(n, blocksPerSegment int) *Store {
	st := &Store{
		all:  make([]*Segment, 0, n),
		free: make([]*Segment, 0, n),
	}
	for i := 0; i < n; i++ {
		seg := NewSegment(blocksPerSegment)
		st.all = append(st.all, seg)
		st.free = append(st.free, seg)
	}
	return st
}

// Total returns the number of segments the store was constructed with.
func (st *Store) Total() int { return len(st.all) }

// Get returns the segment at index id, its fixed slot in the pool's
// backing array. Used by debugging tools (replserver's "segment <id>")
// that need to address a segment by a stable number rather than a
// pointer.
func (st *Store) Get(id int) (*Segment, error) {
	if id < 0 || id >= len(st.all) {
		return nil, fmt.Errorf("segstore: segment id %d out of range [0, %d)", id, len(st.all))
	}
	return st.all[id], nil
}

// FreeCount returns the number of segments currently on the free list.
func (st *Store) FreeCount() int { return len(st.free) }

// Allocate pops a segment off the free list. Returns NoFreeSegmentError if
// none is available; the caller (logcache) must have ensured GC ran first.
func (st *Store) Allocate() (*Segment, error) {
	n := len(st.free)
	if n == 0 {
		return nil, &simerrors.NoFreeSegmentError{FreeCount: 0}
	}
	seg := st.free[n-1]
	st.free = st.free[:n-1]
	return seg, nil
}

// Release resets seg and returns it to the free list.
func (st *Store) Release(seg *Segment) {
	seg.Reset()
	st.free = append(st.free, seg)
}
