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

package policy

import (
	"container/list"

	"github.com/launix-de/cachesim/internal/segstore"
)

// SelectiveFIFO keeps one FIFO queue per stream class (Segment.ClassNum)
// and scans them in priority order, skipping streams the GC-mode
// high-watermark rejects. Grounded on SelectiveFifoEvictPolicy
// (evict_policy_selective_fifo.h/.cpp), with the original's debug
// printf-laden "reverse" branch replaced by the single configurable scan
// order spec.md §4 describes: highest class first (reverse=false, the
// default) or lowest class first (reverse=true), plus a bounded GC-mode
// rotation instead of an
// unbounded spin.
type SelectiveFIFO struct {
	numStreams int
	queues     []*list.List
	handle     map[*segstore.Segment]*list.Element
	streamOf   map[*segstore.Segment]int
	reverse    bool
	gcMode     bool
	// gcUtilCeiling is the fraction of segment capacity above which a
	// GC-mode scan rotates a queue head to the tail and tries the next
	// stream, instead of accepting a still-mostly-valid victim.
	gcUtilCeiling  float64
	pagesInSegment int
}

// NewSelectiveFIFO creates a SelectiveFIFO with numStreams queues.
// reverse selects low-class-first scan order (without it the highest
// class is scanned first); gcMode enables the
// utilization-ceiling rotation used while compacting under pressure.
func NewSelectiveFIFO(numStreams int, pagesInSegment int, reverse, gcMode bool) *SelectiveFIFO {
	queues := make([]*list.List, numStreams)
	for i := range queues {
		queues[i] = list.New()
	}
	return &SelectiveFIFO{
		numStreams:     numStreams,
		queues:         queues,
		handle:         make(map[*segstore.Segment]*list.Element),
		streamOf:       make(map[*segstore.Segment]int),
		reverse:        reverse,
		gcMode:         gcMode,
		gcUtilCeiling:  0.85,
		pagesInSegment: pagesInSegment,
	}
}

func (p *SelectiveFIFO) streamIndex(seg *segstore.Segment) int {
	id := int(seg.ClassNum)
	if id < 0 {
		id = 0
	}
	if id >= p.numStreams {
		id = p.numStreams - 1
	}
	return id
}

func (p *SelectiveFIFO) Add(seg *segstore.Segment) {
	id := p.streamIndex(seg)
	el := p.queues[id].PushBack(seg)
	p.handle[seg] = el
	p.streamOf[seg] = id
}

func (p *SelectiveFIFO) Remove(seg *segstore.Segment) {
	el, ok := p.handle[seg]
	if !ok {
		return
	}
	id := p.streamOf[seg]
	p.queues[id].Remove(el)
	delete(p.handle, seg)
	delete(p.streamOf, seg)
}

func (p *SelectiveFIFO) Update(seg *segstore.Segment) {} // FIFO within each stream; no reordering

// Choose scans streams in the configured order; with gcMode on, a head
// whose utilization exceeds gcUtilCeiling is rotated to its queue's tail
// (at most once per queue per call) rather than accepted.
func (p *SelectiveFIFO) Choose() *segstore.Segment {
	order := make([]int, p.numStreams)
	if p.reverse {
		for i := range order {
			order[i] = i
		}
	} else {
		for i := range order {
			order[i] = p.numStreams - 1 - i
		}
	}
	for _, id := range order {
		if v := p.chooseFromQueue(id); v != nil {
			return v
		}
	}
	return nil
}

// ChooseStream picks the oldest segment in a specific stream's queue.
func (p *SelectiveFIFO) ChooseStream(streamID int) *segstore.Segment {
	if streamID < 0 || streamID >= p.numStreams {
		return nil
	}
	front := p.queues[streamID].Front()
	if front == nil {
		return nil
	}
	victim := front.Value.(*segstore.Segment)
	p.queues[streamID].Remove(front)
	delete(p.handle, victim)
	delete(p.streamOf, victim)
	return victim
}

func (p *SelectiveFIFO) chooseFromQueue(id int) *segstore.Segment {
	q := p.queues[id]
	rotations := 0
	for rotations <= q.Len() {
		front := q.Front()
		if front == nil {
			return nil
		}
		victim := front.Value.(*segstore.Segment)
		if p.gcMode && float64(victim.ValidCnt) > float64(p.pagesInSegment)*p.gcUtilCeiling {
			q.MoveToBack(front)
			rotations++
			continue
		}
		q.Remove(front)
		delete(p.handle, victim)
		delete(p.streamOf, victim)
		return victim
	}
	return nil
}
