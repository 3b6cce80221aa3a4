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

// FIFO picks the oldest-closed segment regardless of its valid count.
// Grounded on FifoEvictPolicy (evict_policy_fifo.h/.cpp).
type FIFO struct {
	queue  *list.List
	handle map[*segstore.Segment]*list.Element
}

// NewFIFO creates an empty FIFO victim queue.
func NewFIFO() *FIFO {
	return &FIFO{queue: list.New(), handle: make(map[*segstore.Segment]*list.Element)}
}

func (p *FIFO) Add(seg *segstore.Segment) {
	el := p.queue.PushBack(seg)
	p.handle[seg] = el
}

func (p *FIFO) Remove(seg *segstore.Segment) {
	el, ok := p.handle[seg]
	if !ok {
		return
	}
	p.queue.Remove(el)
	delete(p.handle, seg)
}

func (p *FIFO) Update(seg *segstore.Segment) {} // FIFO ignores valid_cnt changes

func (p *FIFO) Choose() *segstore.Segment {
	front := p.queue.Front()
	if front == nil {
		return nil
	}
	victim := front.Value.(*segstore.Segment)
	p.queue.Remove(front)
	delete(p.handle, victim)
	return victim
}
