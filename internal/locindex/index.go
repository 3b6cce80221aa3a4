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

// Package locindex maps a cache block key to its current (segment, slot)
// location, plus the per-key "last evicted at" timestamp used to detect
// reinsertions. It is a thin, explicit layer so LogCache's bookkeeping
// stays in one place instead of smuggled through global maps (see the
// design notes on the "global logical clock" and "ambient side effects"
// rearchitecture).
package locindex

import "github.com/launix-de/cachesim/internal/segstore"

// Loc identifies a block's current home.
type Loc struct {
	Seg *segstore.Segment
	Idx int
}

// Index is an injective partial map K -> (Segment, slot). The caller is
// responsible for flipping the prior slot's Valid bit and decrementing its
// segment's ValidCnt before calling Put with a new binding for the same
// key (LogCache.invalidate does this).
type Index struct {
	locs       map[uint64]Loc
	evictedTs  map[uint64]uint64
}

// New creates an empty index.
func New() *Index {
	return &Index{
		locs:      make(map[uint64]Loc),
		evictedTs: make(map[uint64]uint64),
	}
}

// Get returns the current location of k, if any.
func (ix *Index) Get(k uint64) (Loc, bool) {
	l, ok := ix.locs[k]
	return l, ok
}

// Put installs (or overwrites) the binding for k.
func (ix *Index) Put(k uint64, seg *segstore.Segment, idx int) {
	ix.locs[k] = Loc{Seg: seg, Idx: idx}
}

// Erase removes k's binding, if any.
func (ix *Index) Erase(k uint64) {
	delete(ix.locs, k)
}

// Len returns the number of live mappings, i.e. |M| in the spec's
// invariant Σ valid_cnt = |M|.
func (ix *Index) Len() int { return len(ix.locs) }

// MarkEvicted records that k left the cache for the cold tier at ts.
func (ix *Index) MarkEvicted(k uint64, ts uint64) {
	ix.evictedTs[k] = ts
}

// EvictedAt returns the timestamp at which k was last evicted, if it
// hasn't been reinserted since.
func (ix *Index) EvictedAt(k uint64) (uint64, bool) {
	ts, ok := ix.evictedTs[k]
	return ts, ok
}

// ClearEvicted removes k's evicted-timestamp entry, used once a
// reinsertion has been accounted for.
func (ix *Index) ClearEvicted(k uint64) {
	delete(ix.evictedTs, k)
}
