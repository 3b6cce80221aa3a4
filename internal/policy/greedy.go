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
	"container/heap"

	"github.com/launix-de/cachesim/internal/segstore"
)

type greedyItem struct {
	seg   *segstore.Segment
	seq   uint64
	index int
}

// greedyHeap is a min-heap on ValidCnt (fewest valid blocks = cheapest
// to compact), ties broken by insertion order for determinism.
type greedyHeap []*greedyItem

func (h greedyHeap) Len() int { return len(h) }
func (h greedyHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.seg.ValidCnt != b.seg.ValidCnt {
		return a.seg.ValidCnt < b.seg.ValidCnt
	}
	return a.seq < b.seq
}
func (h greedyHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *greedyHeap) Push(x any) {
	item := x.(*greedyItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *greedyHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Greedy always offers the segment with the fewest valid blocks.
// Grounded on GreedyEvictPolicy (evict_policy_greedy.h/.cpp): choose
// peeks the heap top without popping, since the caller (LogCache) only
// commits to the victim after deciding to actually reclaim it — Remove
// is the real pop, invoked once that decision is made.
type Greedy struct {
	h      greedyHeap
	handle map[*segstore.Segment]*greedyItem
	seq    uint64
}

// NewGreedy creates an empty Greedy victim selector.
func NewGreedy() *Greedy {
	return &Greedy{handle: make(map[*segstore.Segment]*greedyItem)}
}

func (p *Greedy) Add(seg *segstore.Segment) {
	item := &greedyItem{seg: seg, seq: p.seq}
	p.seq++
	heap.Push(&p.h, item)
	p.handle[seg] = item
}

func (p *Greedy) Remove(seg *segstore.Segment) {
	item, ok := p.handle[seg]
	if !ok {
		return
	}
	heap.Remove(&p.h, item.index)
	delete(p.handle, seg)
}

func (p *Greedy) Update(seg *segstore.Segment) {
	item, ok := p.handle[seg]
	if !ok {
		return
	}
	heap.Fix(&p.h, item.index)
}

func (p *Greedy) Choose() *segstore.Segment {
	if len(p.h) == 0 {
		return nil
	}
	return p.h[0].seg
}
