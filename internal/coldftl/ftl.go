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

// Package coldftl models the backing tier the cache evicts into: a
// page-mapping, log-structured flash translation layer with its own
// greedy garbage collector. It exists so the simulator can report
// end-to-end write amplification (host writes through the cache,
// amplified again by the FTL's own GC), not just the cache's internal
// amplification. Grounded directly on spec.md §4.6, since the matching
// original_source/ftl.h and ftl.cpp are empty in the retrieved corpus;
// the NAND-block/page bookkeeping style (lpn/ppn maps, free list,
// per-stream active block, greedy GC with a "no progress" abort) is
// shaped after the same slab/free-list idiom internal/segstore uses for
// the cache's own segments.
package coldftl

import "github.com/launix-de/cachesim/internal/simerrors"

// page records a single NAND page's mapping state.
type page struct {
	lpn   uint64
	valid bool
}

// block is one erase unit: a fixed run of pages, a subset of which are
// currently valid.
type block struct {
	pages    []page
	writePtr int
	validCnt int
	id       int
}

func (b *block) full() bool { return b.writePtr >= len(b.pages) }

// FTL is a page-mapping flash translation layer.
type FTL struct {
	pageSize       int
	blocks         []*block
	free           []*block
	closed         []*block // full blocks not currently free or active; GC's candidate pool
	lpnToPPN       map[uint64]uint64
	activeByStream map[int]*block

	gcTriggerThreshold int // GC fires while len(free) is below this

	hostPageWrites uint64
	nandPageWrites uint64
}

func encodePPN(blockID, pageIdx int) uint64 {
	return uint64(blockID)<<32 | uint64(uint32(pageIdx))
}
func decodePPN(ppn uint64) (blockID, pageIdx int) {
	return int(ppn >> 32), int(uint32(ppn))
}

// gcStream is the stream id GC-driven rewrites are attributed under,
// distinct from any real host stream id (always non-negative).
const gcStream = -1

// New creates an FTL with numBlocks erase blocks of blockBytes each,
// addressed in pageBytes-sized pages. gcTriggerThreshold is the free
// block count below which GC runs on every write.
func New(numBlocks int, blockBytes, pageBytes int, gcTriggerThreshold int) *FTL {
	pagesPerBlock := blockBytes / pageBytes
	f := &FTL{
		pageSize:           pageBytes,
		blocks:             make([]*block, 0, numBlocks),
		free:               make([]*block, 0, numBlocks),
		lpnToPPN:           make(map[uint64]uint64),
		activeByStream:     make(map[int]*block),
		gcTriggerThreshold: gcTriggerThreshold,
	}
	for i := 0; i < numBlocks; i++ {
		b := &block{pages: make([]page, pagesPerBlock), id: i}
		f.blocks = append(f.blocks, b)
		f.free = append(f.free, b)
	}
	return f
}

// HostPageWrites returns the number of pages written on behalf of the
// host (via Write).
func (f *FTL) HostPageWrites() uint64 { return f.hostPageWrites }

// NANDPageWrites returns the total number of pages physically written,
// including GC's own copy-forward traffic.
func (f *FTL) NANDPageWrites() uint64 { return f.nandPageWrites }

// WriteAmplification is NANDPageWrites/HostPageWrites, or 1.0 if no host
// writes have occurred yet.
func (f *FTL) WriteAmplification() float64 {
	if f.hostPageWrites == 0 {
		return 1.0
	}
	return float64(f.nandPageWrites) / float64(f.hostPageWrites)
}

func (f *FTL) allocate() (*block, error) {
	n := len(f.free)
	if n == 0 {
		return nil, &simerrors.FTLExhaustionError{}
	}
	b := f.free[n-1]
	f.free = f.free[:n-1]
	return b, nil
}

func (f *FTL) reset(b *block) {
	for i := range b.pages {
		b.pages[i] = page{}
	}
	b.writePtr = 0
	b.validCnt = 0
}

// Write services a host write of size bytes at lba, attributing its
// pages to stream's active block. It returns the number of pages
// written, or an error if the FTL has exhausted free blocks even after
// running GC.
func (f *FTL) Write(lba uint64, size int, stream int) (int, error) {
	startLpn := lba / uint64(f.pageSize)
	endLpn := (lba + uint64(size) - 1) / uint64(f.pageSize)
	n := 0
	for lpn := startLpn; lpn <= endLpn; lpn++ {
		if err := f.writeOnePage(lpn, stream, true); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Trim invalidates the pages covering [lba, lba+size) without writing
// anything.
func (f *FTL) Trim(lba uint64, size int) {
	startLpn := lba / uint64(f.pageSize)
	endLpn := (lba + uint64(size) - 1) / uint64(f.pageSize)
	for lpn := startLpn; lpn <= endLpn; lpn++ {
		f.invalidate(lpn)
	}
}

func (f *FTL) invalidate(lpn uint64) {
	ppn, ok := f.lpnToPPN[lpn]
	if !ok {
		return
	}
	blockID, pageIdx := decodePPN(ppn)
	b := f.blocks[blockID]
	if b.pages[pageIdx].valid {
		b.pages[pageIdx].valid = false
		b.validCnt--
	}
	delete(f.lpnToPPN, lpn)
}

func (f *FTL) writeOnePage(lpn uint64, stream int, isHost bool) error {
	f.invalidate(lpn)

	active := f.activeByStream[stream]
	if active == nil || active.full() {
		if len(f.free) < f.gcTriggerThreshold {
			f.runGC()
		}
		b, err := f.allocate()
		if err != nil {
			f.runGC()
			b, err = f.allocate()
			if err != nil {
				return err
			}
		}
		active = b
		f.activeByStream[stream] = active
	}

	idx := active.writePtr
	active.pages[idx] = page{lpn: lpn, valid: true}
	active.writePtr++
	active.validCnt++
	f.lpnToPPN[lpn] = encodePPN(active.id, idx)

	if isHost {
		f.hostPageWrites++
	}
	f.nandPageWrites++

	if active.full() {
		f.closed = append(f.closed, active)
	}

	if len(f.free) < f.gcTriggerThreshold {
		f.runGC()
	}
	return nil
}

// runGC reclaims exactly one victim block, chosen greedily by fewest
// valid pages among the closed pool, copying any live pages forward
// through the GC stream. If the chosen victim is completely valid, GC
// makes no progress and aborts rather than spin — a sign the caller's
// free-block budget is structurally too small, a condition only
// upstream TRIM traffic can relieve.
func (f *FTL) runGC() {
	victimIdx := -1
	for i, b := range f.closed {
		if victimIdx == -1 || b.validCnt < f.closed[victimIdx].validCnt {
			victimIdx = i
		}
	}
	if victimIdx == -1 {
		return
	}
	victim := f.closed[victimIdx]
	f.closed[victimIdx] = f.closed[len(f.closed)-1]
	f.closed = f.closed[:len(f.closed)-1]

	if victim.validCnt == len(victim.pages) {
		f.closed = append(f.closed, victim) // no progress possible; keep it around, don't requeue for GC this call
		return
	}

	for i := range victim.pages {
		p := victim.pages[i]
		if !p.valid {
			continue
		}
		victim.pages[i].valid = false
		victim.validCnt--
		delete(f.lpnToPPN, p.lpn)
		_ = f.writeOnePage(p.lpn, gcStream, false)
	}
	f.reset(victim)
	f.free = append(f.free, victim)
}
