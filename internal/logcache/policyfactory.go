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

package logcache

import (
	"github.com/launix-de/cachesim/internal/classifier"
	"github.com/launix-de/cachesim/internal/policy"
	"github.com/launix-de/cachesim/internal/segstore"
	"github.com/launix-de/cachesim/internal/simerrors"
)

// newPolicy builds the evictor (always non-nil) and, for the
// cost-benefit family, a compactor sharing the same ranked structure —
// those policies already rank by age/utilization, the same signal the
// GC loop's compaction decision needs, so one instance serves both
// roles (spec.md §4.5.1's "compactor ≠ None" gate is simply whether
// CachePolicy is one of this family). The plain queue-style policies
// (fifo, fifo-zero, greedy, selective-fifo, multiqueue) never compact.
func newPolicy(name string, clock policy.Clock, pagesInSegment int) (evictor, compactor policy.Policy, err error) {
	switch name {
	case "fifo":
		return policy.NewFIFO(), nil, nil
	case "fifo-zero":
		return policy.NewFIFOZero(), nil, nil
	case "greedy":
		return policy.NewGreedy(), nil, nil
	case "cost-benefit":
		p := policy.NewCostBenefit(clock, pagesInSegment, nil)
		return p, p, nil
	case "kth-cost-benefit":
		p := policy.NewKthCostBenefit(clock, pagesInSegment, nil, nil)
		return p, p, nil
	case "lambda":
		p := policy.NewLambda(clock, pagesInSegment, 0)
		return p, p, nil
	case "selective-fifo":
		p := policy.NewSelectiveFIFO(classifier.MaxStreams, pagesInSegment, false, true)
		return p, nil, nil
	case "multiqueue":
		p := policy.NewMultiQueue(uint64(pagesInSegment)*2, 8)
		return p, nil, nil
	default:
		return nil, nil, &simerrors.ConfigError{Field: "cache_policy", Reason: "unrecognized policy " + name}
	}
}

// addToPolicy files seg with p, using AddAt when p tracks insertion
// time (MultiQueue) instead of the plain Add.
func addToPolicy(p policy.Policy, seg *segstore.Segment, now uint64) {
	if ta, ok := p.(policy.TimedAdder); ok {
		ta.AddAt(seg, now)
		return
	}
	p.Add(seg)
}
