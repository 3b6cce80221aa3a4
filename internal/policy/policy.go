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

// Package policy implements the pluggable victim-selection strategies
// LogCache's GC loop consults to pick which closed segment to compact or
// evict next. Every variant satisfies the common Policy contract; a few
// also implement the optional extension interfaces below. This mirrors
// the original ssd_waf EvictPolicy class hierarchy (evict_policy.h and
// its evict_policy_*.{h,cpp} siblings) but replaces virtual-method
// default dispatch, which Go lacks, with small composable interfaces.
package policy

import "github.com/launix-de/cachesim/internal/segstore"

// Policy is the contract every victim-selection strategy implements.
type Policy interface {
	// Add registers a newly-closed segment as eligible for selection.
	Add(seg *segstore.Segment)
	// Remove takes a segment out of consideration (e.g. it was reset
	// without being chosen, or picked by a different path).
	Remove(seg *segstore.Segment)
	// Update is called whenever seg's ValidCnt changes so the policy can
	// reorder or requeue it.
	Update(seg *segstore.Segment)
	// Choose returns the next victim without requiring any extra
	// context, or nil if the policy has nothing eligible.
	Choose() *segstore.Segment
}

// TimedAdder is implemented by policies that bucket segments by age at
// insertion time (MultiQueue) and so need "now" in addition to the
// segment itself.
type TimedAdder interface {
	AddAt(seg *segstore.Segment, now uint64)
}

// StreamChooser is implemented by policies that keep one queue per
// stream class and can be asked to pick from a specific one
// (SelectiveFIFO).
type StreamChooser interface {
	ChooseStream(streamID int) *segstore.Segment
}

// SuccessorChooser is implemented by policies that can step to the next
// ranked candidate after the last-chosen one without recomputing the
// whole ranking (KthCostBenefit's next_id mode).
type SuccessorChooser interface {
	ChooseNext() *segstore.Segment
}

// Clock supplies the logical time used by age-based scoring policies
// (CostBenefit, KthCostBenefit, Lambda). LogCache implements it directly.
type Clock interface {
	Now() uint64
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() uint64

// Now implements Clock.
func (f ClockFunc) Now() uint64 { return f() }
