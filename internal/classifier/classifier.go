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

// Package classifier assigns an incoming block to a stream class, the
// number LogCache uses to route its write into a stream-specific active
// segment. Grounded on the original ssd_waf IStream hierarchy
// (istream.h and its hot_cold.*/multi_hot_cold.*/sepbit.* implementers).
package classifier

import "github.com/launix-de/cachesim/internal/segstore"

// GCStreamStart is the first class number reserved for GC-driven
// streams; host-write classifiers return values below it, GC-write
// classifiers return values at or above it. The original's
// Segment::GC_STREAM_START is referenced throughout log_cache.cpp but
// never assigned a literal in the sources available here; 16 is this
// port's chosen default, leaving room for up to 16 host streams before
// the GC stream range begins (see DESIGN.md's Open Questions).
const GCStreamStart = 16

// MaxStreams bounds the number of distinct stream classes a classifier
// may hand out, matching IStream::MAX_STREAMS.
const MaxStreams = 40

// CreatedTimestampUnset is the sentinel original code used for "this
// key has no recorded creation timestamp yet" (UINT64_MAX in C++).
const CreatedTimestampUnset = ^uint64(0)

// Classifier maps a block write to a stream class number.
type Classifier interface {
	// Classify returns the stream class for a block being written.
	// isGCAppend distinguishes a GC-driven rewrite from a host write;
	// now is the current logical time; createdTs is the block's
	// original creation timestamp (CreatedTimestampUnset if unknown).
	Classify(blockAddr uint64, isGCAppend bool, now, createdTs uint64) int32

	// Append notifies the classifier that blockAddr was just written by
	// the host at logical time now, with validBlocks context (meaning
	// varies per classifier; LogCache passes the live-block count of the
	// segment the write landed in, which is how SepBIT reads it).
	Append(blockAddr uint64, now uint64, validBlocks uint64)

	// GcAppend notifies the classifier that blockAddr was just
	// rewritten by GC.
	GcAppend(blockAddr uint64)

	// CollectSegment notifies the classifier that seg was just chosen
	// as a GC victim at logical time now, letting it update any
	// running per-class statistics (e.g. SepBIT's average lifespan).
	CollectSegment(seg *segstore.Segment, now uint64)
}

// VictimStreamer is implemented by classifiers that can additionally
// nominate a whole GC stream as ready for collection once it has aged
// past a threshold (MultiHotCold's GetVictimStreamId).
type VictimStreamer interface {
	GetVictimStreamID(now, threshold uint64) int
}
