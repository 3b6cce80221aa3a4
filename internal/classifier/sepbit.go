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

package classifier

import (
	"math"

	"github.com/launix-de/cachesim/internal/segstore"
)

// recencyWindow tracks, for the most recent capacity writes, how long
// ago each block address was last seen — a bounded ring buffer standing
// in for the original's fixed-size mmap'd FIFO (fifo.h's FIFO type,
// there backed by a 128M-entry flat array; a Go map keyed by the
// addresses actually seen is the idiomatic equivalent of that sparse
// usage pattern without preallocating a huge flat array).
type recencyWindow struct {
	capacity int
	order    []uint64 // ring of block addresses, oldest at head
	head     int
	size     int
	posOf    map[uint64]int // blockAddr -> absolute sequence number of its last write
	seq      int
}

func newRecencyWindow(capacity int) *recencyWindow {
	if capacity <= 0 {
		capacity = 1
	}
	return &recencyWindow{
		capacity: capacity,
		order:    make([]uint64, capacity),
		posOf:    make(map[uint64]int),
	}
}

// update records a fresh write of blockAddr and evicts down to at most
// min(threshold, validBlocks) entries, approximating FIFO::Update's dual
// single-step eviction check with a loop to the same steady-state bound.
func (w *recencyWindow) update(blockAddr uint64, threshold float64, validBlocks uint64) {
	tail := (w.head + w.size) % w.capacity
	if w.size == w.capacity {
		oldest := w.order[w.head]
		if w.posOf[oldest] == w.seq-w.size {
			delete(w.posOf, oldest)
		}
		w.head = (w.head + 1) % w.capacity
		w.size--
	}
	w.order[tail] = blockAddr
	w.posOf[blockAddr] = w.seq
	w.seq++
	w.size++

	limit := threshold
	if float64(validBlocks) < limit {
		limit = float64(validBlocks)
	}
	for float64(w.size) > limit && w.size > 0 {
		oldest := w.order[w.head]
		if w.posOf[oldest] == w.seq-w.size {
			delete(w.posOf, oldest)
		}
		w.head = (w.head + 1) % w.capacity
		w.size--
	}
}

// query returns how many writes ago blockAddr was last seen, or
// math.MaxUint64 if it isn't tracked.
func (w *recencyWindow) query(blockAddr uint64) uint64 {
	pos, ok := w.posOf[blockAddr]
	if !ok {
		return math.MaxUint64
	}
	return uint64(w.seq - pos)
}

// SepBIT approximates block lifespan from recent write recency and uses
// it to split host writes into hot/cold, and GC rewrites into age
// bands relative to the running average lifespan. Grounded on SepBIT
// (sepbit.h/.cpp) plus its FIFO/Metadata helpers (fifo.h, metadata.h).
type SepBIT struct {
	avgLifespan             float64
	classNumOfLastCollected int32
	recency                 *recencyWindow
	lastWriteTs             map[uint64]uint64 // Metadata::Query/Update equivalent
	lifespanWindow          float64           // FIFO threshold parameter, the original's compile-time mAvgLifespan-derived cap
	totalLifespan           uint64
	numCollects             int
}

// NewSepBIT creates a SepBIT classifier. recencyCapacity bounds the
// write-recency ring buffer (the original's fixed 128M-entry FIFO).
func NewSepBIT(recencyCapacity int) *SepBIT {
	return &SepBIT{
		avgLifespan: math.MaxFloat64,
		recency:     newRecencyWindow(recencyCapacity),
		lastWriteTs: make(map[uint64]uint64),
	}
}

func (c *SepBIT) Classify(blockAddr uint64, isGCAppend bool, now, createdTs uint64) int32 {
	if !isGCAppend {
		lifespan := c.recency.query(blockAddr)
		if lifespan != math.MaxUint64 && float64(lifespan) < c.avgLifespan {
			return 0
		}
		return 1
	}
	if c.classNumOfLastCollected == 0 {
		return 2 + GCStreamStart
	}
	age := now - c.lastWriteTs[blockAddr]
	switch {
	case float64(age) < 4*c.avgLifespan:
		return 3 + GCStreamStart
	case float64(age) < 16*c.avgLifespan:
		return 4 + GCStreamStart
	default:
		return 5 + GCStreamStart
	}
}

// CollectSegment folds a GC-collected segment's age into the running
// average lifespan once every 16 class-0 (hot-stream) collections,
// matching the original's batching cadence exactly.
func (c *SepBIT) CollectSegment(seg *segstore.Segment, now uint64) {
	if seg.ClassNum == 0 {
		c.totalLifespan += now - seg.CreateTs
		c.numCollects++
	}
	if c.numCollects == 16 {
		c.avgLifespan = float64(c.totalLifespan) / float64(c.numCollects)
		c.numCollects = 0
		c.totalLifespan = 0
	}
	c.classNumOfLastCollected = seg.ClassNum
}

// Append records a host write for future lifespan/recency queries.
// validBlocks is the current live-block count of the segment the write
// landed in, used (via avgLifespan) as the recency window's retention
// threshold.
func (c *SepBIT) Append(blockAddr uint64, now uint64, validBlocks uint64) {
	now++
	c.recency.update(blockAddr, c.avgLifespan, validBlocks)
	c.lastWriteTs[blockAddr] = now
}

func (c *SepBIT) GcAppend(blockAddr uint64) {}
