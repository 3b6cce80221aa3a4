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

type lambdaItem struct {
	seg   *segstore.Segment
	score float64
	seq   uint64
	index int
}

// lambdaHeap is a max-heap on score; higher score (slower invalidation
// rate) wins, matching the original's sign convention exactly.
type lambdaHeap []*lambdaItem

func (h lambdaHeap) Len() int { return len(h) }
func (h lambdaHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.score != b.score {
		return a.score > b.score
	}
	return a.seq < b.seq
}
func (h lambdaHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *lambdaHeap) Push(x any) {
	item := x.(*lambdaItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *lambdaHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Lambda scores a segment by its negated per-page invalidation rate,
// -((capacity-ValidCnt)/age). Grounded on LambdaEvictPolicy
// (evict_policy_lambda.h/.cpp); the validateTop parameter is the
// original's K (also reused as K_VALIDATE there).
type Lambda struct {
	h              lambdaHeap
	handle         map[*segstore.Segment]*lambdaItem
	clock          Clock
	pagesInSegment int
	validateTop    int
	seq            uint64
}

// NewLambda creates a Lambda policy. validateTop bounds the re-scoring
// loop in Choose; the original defaults it to 4.
func NewLambda(clock Clock, pagesInSegment int, validateTop int) *Lambda {
	if validateTop <= 0 {
		validateTop = 4
	}
	return &Lambda{
		handle:         make(map[*segstore.Segment]*lambdaItem),
		clock:          clock,
		pagesInSegment: pagesInSegment,
		validateTop:    validateTop,
	}
}

func (p *Lambda) score(seg *segstore.Segment) float64 {
	age := p.clock.Now() - seg.CreateTs
	denom := age
	if denom < 1 {
		denom = 1
	}
	invalid := float64(p.pagesInSegment) - float64(seg.ValidCnt)
	return -(invalid / float64(denom))
}

func (p *Lambda) Add(seg *segstore.Segment) {
	item := &lambdaItem{seg: seg, score: p.score(seg), seq: p.seq}
	p.seq++
	heap.Push(&p.h, item)
	p.handle[seg] = item
}

func (p *Lambda) Remove(seg *segstore.Segment) {
	item, ok := p.handle[seg]
	if !ok {
		return
	}
	heap.Remove(&p.h, item.index)
	delete(p.handle, seg)
}

func (p *Lambda) Update(seg *segstore.Segment) {
	item, ok := p.handle[seg]
	if !ok {
		return
	}
	item.score = p.score(seg)
	heap.Fix(&p.h, item.index)
}

func (p *Lambda) Choose() *segstore.Segment {
	for i := 0; i < p.validateTop && len(p.h) > 0; i++ {
		top := p.h[0]
		cur := p.score(top.seg)
		if cur == top.score {
			return top.seg
		}
		top.score = cur
		heap.Fix(&p.h, top.index)
	}
	if len(p.h) == 0 {
		return nil
	}
	return p.h[0].seg
}
