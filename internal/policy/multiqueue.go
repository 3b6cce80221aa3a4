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

// MultiQueue buckets segments by age at insertion time (age/ageGranularity,
// capped to the last bucket) and scans from the oldest bucket down.
// Grounded on MultiQueueEvictPolicy (evict_policy_multiqueue.h/.cpp).
// Add without a timestamp is a no-op (matching the original, which only
// files a segment once AddAt supplies "now"); callers must use AddAt.
type MultiQueue struct {
	ageGranularity uint64
	queues         []*list.List
	handle         map[*segstore.Segment]*list.Element
	queueOf        map[*segstore.Segment]int
}

// NewMultiQueue creates a MultiQueue with numBuckets age buckets of
// width ageGranularity logical-time units each.
func NewMultiQueue(ageGranularity uint64, numBuckets int) *MultiQueue {
	queues := make([]*list.List, numBuckets)
	for i := range queues {
		queues[i] = list.New()
	}
	return &MultiQueue{
		ageGranularity: ageGranularity,
		queues:         queues,
		handle:         make(map[*segstore.Segment]*list.Element),
		queueOf:        make(map[*segstore.Segment]int),
	}
}

func (p *MultiQueue) queueID(age uint64) int {
	if p.ageGranularity == 0 {
		return 0
	}
	id := int(age / p.ageGranularity)
	if id >= len(p.queues) {
		id = len(p.queues) - 1
	}
	return id
}

// Add is a no-op; MultiQueue requires the insertion timestamp to place a
// segment in a bucket. Use AddAt.
func (p *MultiQueue) Add(seg *segstore.Segment) {}

func (p *MultiQueue) AddAt(seg *segstore.Segment, now uint64) {
	id := p.queueID(now - seg.CreateTs)
	el := p.queues[id].PushBack(seg)
	p.handle[seg] = el
	p.queueOf[seg] = id
}

func (p *MultiQueue) Remove(seg *segstore.Segment) {
	el, ok := p.handle[seg]
	if !ok {
		return
	}
	id := p.queueOf[seg]
	p.queues[id].Remove(el)
	delete(p.handle, seg)
	delete(p.queueOf, seg)
}

func (p *MultiQueue) Update(seg *segstore.Segment) {} // bucket assignment is fixed at insertion

func (p *MultiQueue) Choose() *segstore.Segment {
	for i := len(p.queues) - 1; i >= 0; i-- {
		front := p.queues[i].Front()
		if front == nil {
			continue
		}
		victim := front.Value.(*segstore.Segment)
		p.queues[i].Remove(front)
		delete(p.handle, victim)
		delete(p.queueOf, victim)
		return victim
	}
	return nil
}
