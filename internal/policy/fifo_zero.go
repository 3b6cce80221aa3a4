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

// FIFOZero is plain FIFO, except any segment whose ValidCnt has dropped
// to zero (a free compaction: nothing to copy forward) is always
// preferred over the age-ordered queue. Grounded on FifoZeroEvictPolicy
// (evict_policy_fifo_zero.h/.cpp).
type FIFOZero struct {
	queue     *list.List
	zeroQueue *list.List
	handle    map[*segstore.Segment]*list.Element
	inZero    map[*segstore.Segment]bool
}

// NewFIFOZero creates an empty FIFO-with-zero-priority victim queue.
func NewFIFOZero() *FIFOZero {
	return &FIFOZero{
		queue:     list.New(),
		zeroQueue: list.New(),
		handle:    make(map[*segstore.Segment]*list.Element),
		inZero:    make(map[*segstore.Segment]bool),
	}
}

func (p *FIFOZero) Add(seg *segstore.Segment) {
	if seg.ValidCnt == 0 {
		el := p.zeroQueue.PushBack(seg)
		p.handle[seg] = el
		p.inZero[seg] = true
		return
	}
	el := p.queue.PushBack(seg)
	p.handle[seg] = el
	p.inZero[seg] = false
}

func (p *FIFOZero) Remove(seg *segstore.Segment) {
	el, ok := p.handle[seg]
	if !ok {
		return
	}
	if p.inZero[seg] {
		p.zeroQueue.Remove(el)
	} else {
		p.queue.Remove(el)
	}
	delete(p.handle, seg)
	delete(p.inZero, seg)
}

// Update migrates seg into the zero-priority queue once its ValidCnt
// reaches zero. Segments never move back (ValidCnt only rises again via
// Append, which implies the segment was reallocated and re-Added, not
// Updated).
func (p *FIFOZero) Update(seg *segstore.Segment) {
	el, ok := p.handle[seg]
	if !ok {
		return
	}
	if seg.ValidCnt == 0 && !p.inZero[seg] {
		p.queue.Remove(el)
		newEl := p.zeroQueue.PushBack(seg)
		p.handle[seg] = newEl
		p.inZero[seg] = true
	}
}

func (p *FIFOZero) Choose() *segstore.Segment {
	if front := p.zeroQueue.Front(); front != nil {
		victim := front.Value.(*segstore.Segment)
		p.zeroQueue.Remove(front)
		delete(p.handle, victim)
		delete(p.inZero, victim)
		return victim
	}
	front := p.queue.Front()
	if front == nil {
		return nil
	}
	victim := front.Value.(*segstore.Segment)
	p.queue.Remove(front)
	delete(p.handle, victim)
	delete(p.inZero, victim)
	return victim
}
