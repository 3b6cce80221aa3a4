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

// MultiHotCold buckets GC-rewritten blocks into one of maxGCStreams
// age-granularity buckets (GCStreamStart-relative class numbers), and
// optionally routes host writes through a simple age-threshold hot/cold
// split. Grounded on MultiHotCold (multi_hot_cold.h/.cpp).
type MultiHotCold struct {
	maxGCStreams            int
	timestampGranularity    uint64
	checkCreatedOnly        bool
	classifyHostAppend      bool
	classifyGCAppend        bool
	hostHotThreshold        uint64
	oldestTimestampByStream map[int]uint64
}

// NewMultiHotCold creates a MultiHotCold classifier.
//
//   - maxGCStreams bounds how many distinct GC-age buckets are handed out.
//   - timestampGranularity is the bucket width in logical-time units (or,
//     if checkCreatedOnly, in raw creation-timestamp units).
//   - checkCreatedOnly buckets by created_ts directly instead of by
//     (now - created_ts).
//   - classifyHostAppend/classifyGCAppend gate whether host writes and GC
//     rewrites are routed through the age-bucket logic at all, matching
//     the original's constructor flags.
//   - hostHotThreshold sets the age cutoff for host writes classified via
//     the hot/cold path: a write younger than 0.3 × hostHotThreshold
//     (in logical-time units) is "hot". The original applies the same
//     0.3 fraction to an externally-owned global threshold, which this
//     port takes as a parameter instead.
func NewMultiHotCold(maxGCStreams int, timestampGranularity uint64, checkCreatedOnly, classifyHostAppend, classifyGCAppend bool, hostHotThreshold uint64) *MultiHotCold {
	if timestampGranularity == 0 {
		timestampGranularity = 1
	}
	return &MultiHotCold{
		maxGCStreams:            maxGCStreams,
		timestampGranularity:    timestampGranularity,
		checkCreatedOnly:        checkCreatedOnly,
		classifyHostAppend:      classifyHostAppend,
		classifyGCAppend:        classifyGCAppend,
		hostHotThreshold:        hostHotThreshold,
		oldestTimestampByStream: make(map[int]uint64),
	}
}

func (c *MultiHotCold) Classify(blockAddr uint64, isGCAppend bool, now, createdTs uint64) int32 {
	timeDiff := now - createdTs
	if c.checkCreatedOnly {
		timeDiff = createdTs
	}

	if !isGCAppend {
		if c.classifyHostAppend {
			if !c.classifyGCAppend {
				if createdTs == CreatedTimestampUnset {
					return 1
				}
				if now-createdTs < uint64(float64(c.hostHotThreshold)*0.3) {
					return 0
				}
				return 1
			}
		} else {
			return 0
		}
	} else if !c.classifyGCAppend {
		return GCStreamStart
	}

	gcStreamID := int(timeDiff / c.timestampGranularity)
	if gcStreamID >= c.maxGCStreams {
		if c.checkCreatedOnly {
			gcStreamID = gcStreamID % c.maxGCStreams
		} else {
			gcStreamID = c.maxGCStreams - 1
		}
	}

	if ts, ok := c.oldestTimestampByStream[gcStreamID]; !ok {
		c.oldestTimestampByStream[gcStreamID] = createdTs
	} else if ts != 0 && createdTs < ts {
		c.oldestTimestampByStream[gcStreamID] = createdTs
	}

	return int32(gcStreamID + GCStreamStart)
}

func (c *MultiHotCold) Append(blockAddr uint64, now uint64, validBlocks uint64) {}
func (c *MultiHotCold) GcAppend(blockAddr uint64)                               {}
func (c *MultiHotCold) CollectSegment(seg *segstore.Segment, now uint64)        {}

// GetVictimStreamID returns a GC stream whose oldest tracked block has
// aged past threshold, or -1 if none qualifies (or checkCreatedOnly is
// false, matching the original's early return).
func (c *MultiHotCold) GetVictimStreamID(now, threshold uint64) int {
	if !c.checkCreatedOnly {
		return -1
	}
	for idx := 0; idx < c.maxGCStreams; idx++ {
		ts, ok := c.oldestTimestampByStream[idx]
		if !ok {
			continue
		}
		if now-ts >= threshold {
			delete(c.oldestTimestampByStream, idx)
			return idx + GCStreamStart
		}
	}
	return -1
}
