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
	"math"

	"github.com/google/btree"
	"github.com/launix-de/cachesim/internal/segstore"
)

// kthItem is the ordered-tree element: ranked by score descending, ties
// broken by insertion sequence so the order is total (a requirement for
// google/btree, which has no separate equality notion).
type kthItem struct {
	score float64
	seq   uint64
	seg   *segstore.Segment
}

func kthLess(a, b kthItem) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.seq < b.seq
}

// RankFunc picks which rank (0 = best victim) Choose should return out
// of n eligible segments, e.g. a percentile instead of always the best.
type RankFunc func(n int) int

// KthCostBenefit ranks segments exactly like CostBenefit (age/u) but
// keeps them in an order-statistic structure so Choose can return an
// arbitrary rank — not just the maximum — and ChooseNext can step to the
// following rank without a full re-scan. Grounded on KthCbEvictPolicy
// (evict_policy_k_cost_benefit.h/.cpp), which relies on a libstdc++
// order-statistics policy-tree (__gnu_pbds::tree with
// tree_order_statistics_node_update) that has no Go-ecosystem
// equivalent; google/btree's ordered Ascend/Descend traversal gives the
// same ranked view; findByOrder walks it counting nodes rather than
// descending an augmented subtree-size index, trading O(log n) for
// O(rank) — acceptable since rankFunc is expected to return a small,
// bounded rank (a percentile or a fixed small k), never an arbitrary
// large index into the full segment population.
type KthCostBenefit struct {
	tree           *btree.BTreeG[kthItem]
	handle         map[*segstore.Segment]kthItem
	clock          Clock
	pagesInSegment int
	score          ScoreFunc
	rank           RankFunc
	seq            uint64
	lastEvictedIdx int
}

// NewKthCostBenefit creates a KthCostBenefit policy. scoreFn and rankFn
// may be nil to use the defaults (age/u scoring, always rank 0).
func NewKthCostBenefit(clock Clock, pagesInSegment int, scoreFn ScoreFunc, rankFn RankFunc) *KthCostBenefit {
	p := &KthCostBenefit{
		tree:           btree.NewG(32, kthLess),
		handle:         make(map[*segstore.Segment]kthItem),
		clock:          clock,
		pagesInSegment: pagesInSegment,
		score:          scoreFn,
		rank:           rankFn,
	}
	if p.score == nil {
		p.score = p.defaultScore
	}
	return p
}

func (p *KthCostBenefit) defaultScore(seg *segstore.Segment) float64 {
	if seg.ValidCnt == 0 {
		return math.Inf(1)
	}
	age := p.clock.Now() - seg.CreateTs
	u := float64(seg.ValidCnt) / float64(p.pagesInSegment)
	return float64(age) / (u + 0.00001)
}

func (p *KthCostBenefit) Add(seg *segstore.Segment) {
	if _, ok := p.handle[seg]; ok {
		return // already tracked (e.g. re-added post-GC without an intervening Remove)
	}
	item := kthItem{score: p.score(seg), seq: p.seq, seg: seg}
	p.seq++
	p.tree.ReplaceOrInsert(item)
	p.handle[seg] = item
}

func (p *KthCostBenefit) Remove(seg *segstore.Segment) {
	item, ok := p.handle[seg]
	if !ok {
		return
	}
	p.tree.Delete(item)
	delete(p.handle, seg)
}

func (p *KthCostBenefit) Update(seg *segstore.Segment) {
	old, ok := p.handle[seg]
	if !ok {
		p.Add(seg)
		return
	}
	p.tree.Delete(old)
	updated := kthItem{score: p.score(seg), seq: old.seq, seg: seg}
	p.tree.ReplaceOrInsert(updated)
	p.handle[seg] = updated
}

// findByOrder returns the idx-th ranked item (0 = best victim).
func (p *KthCostBenefit) findByOrder(idx int) (kthItem, bool) {
	if idx < 0 || idx >= p.tree.Len() {
		return kthItem{}, false
	}
	var found kthItem
	ok := false
	i := 0
	p.tree.Ascend(func(item kthItem) bool {
		if i == idx {
			found = item
			ok = true
			return false
		}
		i++
		return true
	})
	return found, ok
}

// ChooseAt removes and returns the idx-th ranked segment directly.
func (p *KthCostBenefit) ChooseAt(idx int) *segstore.Segment {
	item, ok := p.findByOrder(idx)
	if !ok {
		return nil
	}
	p.Remove(item.seg)
	p.lastEvictedIdx = idx
	return item.seg
}

// Choose applies rank (if set) to the current population size to pick
// which rank to evict, defaulting to rank 0 (the single best victim).
func (p *KthCostBenefit) Choose() *segstore.Segment {
	if p.tree.Len() == 0 {
		return nil
	}
	idx := 0
	if p.rank != nil {
		idx = p.rank(p.tree.Len())
		if idx >= p.tree.Len() {
			idx = p.tree.Len() - 1
		}
		if idx < 0 {
			idx = 0
		}
	}
	return p.ChooseAt(idx)
}

// ChooseNext steps to the rank just above the last-chosen one, or falls
// back to Choose if nothing has been chosen yet (matching
// choose_segment(true) in the original, which special-cases
// last_evicted_idx == 0).
func (p *KthCostBenefit) ChooseNext() *segstore.Segment {
	if p.lastEvictedIdx == 0 {
		return p.Choose()
	}
	return p.ChooseAt(p.lastEvictedIdx - 1)
}
