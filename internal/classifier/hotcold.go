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

import "github.com/launix-de/cachesim/internal/segstore"

// HotCold is the simplest classifier: a block whose age since creation
// is within hotWindow logical-time units is "hot" (class 0), everything
// else is "cold" (class 1). GC rewrites get the same split shifted up by
// GCStreamStart. Grounded on HotCold (hot_cold.h/.cpp), whose
// original hardcodes a 16 MiB / 4 KiB window; this port takes the
// window as a parameter instead of a compiled-in constant.
type HotCold struct {
	hotWindow uint64
	Hot       uint64 // diagnostic counters, mirroring the original's static hot/cold tallies
	Cold      uint64
}

// NewHotCold creates a HotCold classifier with the given hot-window
// width in logical-time units.
func NewHotCold(hotWindow uint64) *HotCold {
	return &HotCold{hotWindow: hotWindow}
}

func (c *HotCold) Classify(blockAddr uint64, isGCAppend bool, now, createdTs uint64) int32 {
	class := int32(1)
	if createdTs != CreatedTimestampUnset && now-createdTs <= c.hotWindow {
		c.Hot++
		class = 0
	} else {
		c.Cold++
	}
	if isGCAppend {
		class += GCStreamStart
	}
	return class
}

func (c *HotCold) Append(blockAddr uint64, now uint64, validBlocks uint64) {}
func (c *HotCold) GcAppend(blockAddr uint64)                               {}
func (c *HotCold) CollectSegment(seg *segstore.Segment, now uint64)        {}
