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

// Package histogram implements the fixed-bucket counter used to track
// block-age and per-victim populations. Grounded on the original
// ssd_waf Histogram type (histogram.h/.cpp): a granularity divides keys
// into buckets, the last bucket absorbs any overflow, and on shutdown the
// non-empty buckets are dumped to a sink.
package histogram

import (
	"fmt"
	"io"
)

// Histogram is a fixed-width bucket array: inc(key, delta) writes to
// bucket min(key/granularity, maxBuckets-1).
type Histogram struct {
	name        string
	granularity uint64
	counts      []uint64
	sink        io.Writer
	closed      bool
}

// New creates a Histogram with the given name, bucket granularity, and
// bucket count, writing its final dump to sink when Close is called.
// Granularity of 0 is treated as 1 (a granularity-0 histogram is
// meaningless, matching the original's defensive clamp).
func New(name string, granularity uint64, maxBuckets int, sink io.Writer) *Histogram {
	if granularity == 0 {
		granularity = 1
	}
	if maxBuckets <= 0 {
		maxBuckets = 1
	}
	return &Histogram{
		name:        name,
		granularity: granularity,
		counts:      make([]uint64, maxBuckets),
		sink:        sink,
	}
}

// Inc increments the bucket for key by delta (default semantics: callers
// wanting +1 pass 1).
func (h *Histogram) Inc(key uint64, delta uint64) {
	idx := key / h.granularity
	last := uint64(len(h.counts) - 1)
	if idx > last {
		idx = last
	}
	h.counts[idx] += delta
}

// Bucket returns the current count for a given bucket index, for tests.
func (h *Histogram) Bucket(i int) uint64 {
	if i < 0 || i >= len(h.counts) {
		return 0
	}
	return h.counts[i]
}

// Dump writes "---summary of <name>---" followed by "<bucket> <count>"
// for every non-zero bucket, per the wire format in spec.md §6. Safe to
// call more than once (e.g. from Close and a mid-run debug dump); it does
// not reset state.
func (h *Histogram) Dump() {
	if h.sink == nil {
		return
	}
	fmt.Fprintf(h.sink, "---summary of %s---\n", h.name)
	for i, c := range h.counts {
		if c > 0 {
			fmt.Fprintf(h.sink, "%d %d\n", i, c)
		}
	}
}

// Close dumps the histogram exactly once. Safe to call multiple times.
func (h *Histogram) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.Dump()
	if c, ok := h.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
