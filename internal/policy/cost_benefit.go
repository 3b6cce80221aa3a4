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
	"math"

	"github.com/launix-de/cachesim/internal/segstore"
)

// costBenefitValidateTop is how many heap-top candidates choose()
// re-scores before committing, matching K_VALIDATE in the original
// CbEvictPolicy. The score includes the segment's age, which grows with
// logical time between Update calls, so cached heap scores go stale;
// this bounds the cost of re-validating the top without a full re-sort.
const costBenefitValidateTop = 10

type cbItem struct {
	seg   *segstore.Segment
	score float64
	seq   uint64
	index int
}

// cbHeap is a max-heap on score (larger age/utilization ratio = more
// benefit from reclaiming now).
type cbHeap []*cbItem

func (h cbHeap) Len() int { return len(h) }
func (h cbHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.score != b.score {
		return a.score > b.score
	}
	return a.seq < b.seq
}
func (h cbHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *cbHeap) Push(x any) {
	item := x.(*cbItem)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *cbHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// ScoreFunc computes a segment's eviction score; higher is a better
// victim. CostBenefit's default is age/(utilization+eps), matching the
// original's age/u; callers may substitute a different scorer (e.g. for
// tests).
type ScoreFunc func(seg *segstore.Segment) float64

// CostBenefit ranks closed segments by age/(utilization+eps): an old,
// mostly-invalid segment scores far above a young, mostly-valid one.
// Grounded on CbEvictPolicy (evict_policy_cost_benefit.h/.cpp).
type CostBenefit struct {
	h              cbHeap
	handle         map[*segstore.Segment]*cbItem
	clock          Clock
	pagesInSegment int
	score          ScoreFunc
	seq            uint64
}

// NewCostBenefit creates a CostBenefit policy. clock supplies the
// logical time used by the default age/u scorer; pagesInSegment is the
// segment capacity used to normalize ValidCnt into a utilization
// fraction. Pass a non-nil scoreFn to override the scoring function
// entirely (the original's optional score_func constructor argument).
func NewCostBenefit(clock Clock, pagesInSegment int, scoreFn ScoreFunc) *CostBenefit {
	p := &CostBenefit{
		handle:         make(map[*segstore.Segment]*cbItem),
		clock:          clock,
		pagesInSegment: pagesInSegment,
		score:          scoreFn,
	}
	if p.score == nil {
		p.score = p.defaultScore
	}
	return p
}

func (p *CostBenefit) defaultScore(seg *segstore.Segment) float64 {
	if seg.ValidCnt == 0 {
		return math.Inf(1)
	}
	age := p.clock.Now() - seg.CreateTs
	u := float64(seg.ValidCnt) / float64(p.pagesInSegment)
	return float64(age) / (u + 0.00001)
}

func (p *CostBenefit) Add(seg *segstore.Segment) {
	item := &cbItem{seg: seg, score: p.score(seg), seq: p.seq}
	p.seq++
	heap.Push(&p.h, item)
	p.handle[seg] = item
}

func (p *CostBenefit) Remove(seg *segstore.Segment) {
	item, ok := p.handle[seg]
	if !ok {
		return
	}
	heap.Remove(&p.h, item.index)
	delete(p.handle, seg)
}

func (p *CostBenefit) Update(seg *segstore.Segment) {
	item, ok := p.handle[seg]
	if !ok {
		return
	}
	item.score = p.score(seg)
	heap.Fix(&p.h, item.index)
}

// Choose re-scores up to costBenefitValidateTop heap tops to settle the
// true current maximum before returning it, matching the original's
// top-k re-validation loop (scores drift with logical time between
// Update calls, so the heap can go briefly stale at the very top).
func (p *CostBenefit) Choose() *segstore.Segment {
	for i := 0; i < costBenefitValidateTop && len(p.h) > 0; i++ {
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
