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

package logcache

import (
	"math"
	"sort"

	"github.com/launix-de/cachesim/internal/classifier"
	"github.com/launix-de/cachesim/internal/ewma"
	"github.com/launix-de/cachesim/internal/segstore"
	"github.com/launix-de/cachesim/internal/trace"
)

// BatchInsert implements spec.md §4.5's public contract: a no-op unless
// op is a write and items is non-empty, otherwise iterating items in key
// order and running the five per-key steps followed by one GC pass.
func (c *LogCache) BatchInsert(streamID int32, items map[uint64]int64, op trace.OpKind) error {
	if op != trace.OpWrite || len(items) == 0 {
		return nil
	}

	keys := make([]uint64, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		sz := items[k]

		c.tickFeedback()
		c.ghost.Access(k)

		seg, err := c.activeSegmentForHostWrite(streamID, k)
		if err != nil {
			return err
		}

		prevCreateTs := c.invalidateOrReinsert(k, sz)

		idx := c.appendToSegment(seg, k, c.now)
		c.index.Put(k, seg, idx)
		c.now++
		c.writeSizeToCache += uint64(sz)
		if sz < c.blockSize {
			c.readBlocksInPartialWrite++
		}

		if c.classifier != nil {
			c.classifier.Append(k, c.now, uint64(seg.ValidCnt))
			_ = prevCreateTs // available for classifiers that want it via Classify, not Append
		}
	}

	return c.runGCUntilLowWater()
}

// activeSegmentForHostWrite resolves the active segment for a host
// write, closing and replacing it if full, per spec.md §4.5 step 2. k's
// current binding is read (not invalidated) here so the classifier sees
// its real prior create_ts; invalidateOrReinsert still owns mutating
// that binding, one step later in BatchInsert's loop.
func (c *LogCache) activeSegmentForHostWrite(streamID int32, k uint64) (*segstore.Segment, error) {
	class := streamID
	if c.classifier != nil {
		createdTs := classifier.CreatedTimestampUnset
		if loc, ok := c.index.Get(k); ok {
			createdTs = loc.Seg.Slots[loc.Idx].CreateTs
		}
		class = c.classifier.Classify(k, false, c.now, createdTs)
	}
	return c.activeSegmentForStream(class)
}

// activeSegmentForStream returns the current active segment for class,
// allocating a fresh one if none exists or the current one is full
// (closing the full one into the evictor first).
func (c *LogCache) activeSegmentForStream(class int32) (*segstore.Segment, error) {
	seg, ok := c.activeByStream[class]
	if ok && !seg.Full() {
		return seg, nil
	}
	if ok && seg.Full() {
		c.closeSegment(seg)
		delete(c.activeByStream, class)
	}
	fresh, err := c.allocateSegment()
	if err != nil {
		return nil, err
	}
	fresh.ClassNum = class
	c.activeByStream[class] = fresh
	return fresh, nil
}

// allocateSegment pulls a segment off the free list, running the GC
// loop inline (mirroring coldftl.writeOnePage's allocate-then-GC-retry
// shape) if the pool is momentarily exhausted between GC passes.
func (c *LogCache) allocateSegment() (*segstore.Segment, error) {
	seg, err := c.store.Allocate()
	if err == nil {
		return seg, nil
	}
	if gcErr := c.runGCUntilLowWater(); gcErr != nil {
		return nil, gcErr
	}
	return c.store.Allocate()
}

// closeSegment registers a just-filled segment with the evictor (and
// the compactor, when it is a distinct instance — the cost-benefit
// family shares one, so this only ever files once in practice).
func (c *LogCache) closeSegment(seg *segstore.Segment) {
	addToPolicy(c.evictor, seg, c.now)
	if c.compactor != nil && c.compactor != c.evictor {
		addToPolicy(c.compactor, seg, c.now)
	}
}

// appendToSegment writes k into seg's next slot, tracking the
// segment-level CreateTs as the minimum of any block it holds (spec.md
// §4.5.2's "target.create_ts = min(target.create_ts, b.create_ts)",
// applied uniformly here so a fresh segment's very first append also
// establishes its CreateTs).
func (c *LogCache) appendToSegment(seg *segstore.Segment, k, createTs uint64) int {
	if seg.WritePtr == 0 {
		seg.CreateTs = createTs
	} else if createTs < seg.CreateTs {
		seg.CreateTs = createTs
	}
	return seg.Append(k, createTs)
}

// invalidateOrReinsert implements spec.md §4.5 step 3: flip the prior
// binding invalid if k is live, or account for a reinsertion and trim
// the cold tier if k was previously evicted. Returns the prior
// create_ts if one existed (classifier.CreatedTimestampUnset otherwise),
// for classifiers that want it.
func (c *LogCache) invalidateOrReinsert(k uint64, sz int64) uint64 {
	if loc, ok := c.index.Get(k); ok {
		prevTs := loc.Seg.Slots[loc.Idx].CreateTs
		loc.Seg.SetSlotInvalid(loc.Idx)
		c.index.Erase(k)
		c.invalidateBlocks++
		c.writeHitSize += uint64(sz)
		if !c.isActive(loc.Seg) {
			c.notifyUpdate(loc.Seg)
		}
		return prevTs
	}
	if _, ok := c.index.EvictedAt(k); ok {
		c.index.ClearEvicted(k)
		c.reinsertBlocks++
		c.cold.Trim(k*uint64(c.blockSize), int(sz))
	}
	return classifier.CreatedTimestampUnset
}

// isActive reports whether seg is currently one of the active segments
// (as opposed to closed and filed with a policy). The stream count is
// small (bounded by classifier.MaxStreams), so a linear scan is cheap.
func (c *LogCache) isActive(seg *segstore.Segment) bool {
	for _, s := range c.activeByStream {
		if s == seg {
			return true
		}
	}
	return false
}

// notifyUpdate tells whichever policy currently owns seg that its
// ValidCnt changed, per the "update is called only for closed segments"
// contract in spec.md §4.3.
func (c *LogCache) notifyUpdate(seg *segstore.Segment) {
	c.evictor.Update(seg)
	if c.compactor != nil && c.compactor != c.evictor {
		c.compactor.Update(seg)
	}
}

// tickFeedback implements spec.md §4.5.3: sample the three EWMA ratios
// every FeedbackSampleBlocks appends, and every 64x that, compare and
// nudge targetValidRatio.
func (c *LogCache) tickFeedback() {
	if c.feedbackSampleBlocks == 0 {
		return
	}
	c.blocksSinceFeedback++
	c.blocksSinceCompare++

	if c.blocksSinceFeedback >= c.feedbackSampleBlocks {
		c.blocksSinceFeedback = 0
		c.rC.UpdateFromCumulative(float64(c.compactedBlocks), float64(c.now))
		c.rE.UpdateFromCumulative(float64(c.evictedBlocks), float64(c.now))
		c.rG.UpdateFromCumulative(float64(c.ghost.EvictedCount()), float64(c.now))
	}

	if c.blocksSinceCompare >= 64*c.feedbackSampleBlocks {
		c.blocksSinceCompare = 0
		rE, rG, rC := ratioValue(c.rE), ratioValue(c.rG), ratioValue(c.rC)
		cur := c.validRatioNow()
		if c.alpha*(rE-rG) > rC {
			c.targetValidRatio = math.Min(c.hardLimit, cur+0.02)
		} else {
			c.targetValidRatio = math.Max(0, cur-0.02)
		}
	}
}

func ratioValue(r *ewma.Ratio) float64 {
	if !r.HasValue() {
		return 0
	}
	return r.Value()
}

func (c *LogCache) validRatioNow() float64 {
	return float64(c.index.Len()) / float64(c.totalBlocks)
}
