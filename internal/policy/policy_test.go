package policy

import (
	"testing"

	"github.com/launix-de/cachesim/internal/segstore"
)

func mkSeg(validCnt int, createTs uint64, class int32) *segstore.Segment {
	s := segstore.NewSegment(16)
	for i := 0; i < validCnt; i++ {
		s.Append(uint64(i), createTs)
	}
	s.CreateTs = createTs
	s.ClassNum = class
	return s
}

func TestFIFOOrdersByInsertion(t *testing.T) {
	p := NewFIFO()
	a := mkSeg(4, 0, 0)
	b := mkSeg(4, 1, 0)
	p.Add(a)
	p.Add(b)
	if got := p.Choose(); got != a {
		t.Fatalf("expected a first")
	}
	if got := p.Choose(); got != b {
		t.Fatalf("expected b second")
	}
	if got := p.Choose(); got != nil {
		t.Fatalf("expected nil when empty, got %v", got)
	}
}

func TestFIFORemove(t *testing.T) {
	p := NewFIFO()
	a := mkSeg(4, 0, 0)
	b := mkSeg(4, 1, 0)
	p.Add(a)
	p.Add(b)
	p.Remove(a)
	if got := p.Choose(); got != b {
		t.Fatal("expected b after removing a")
	}
}

func TestFIFOZeroPrefersZeroValid(t *testing.T) {
	p := NewFIFOZero()
	full := mkSeg(4, 0, 0)
	empty := mkSeg(0, 1, 0)
	p.Add(full)
	p.Add(empty)
	if got := p.Choose(); got != empty {
		t.Fatal("expected zero-valid segment to be preferred despite being newer")
	}
	if got := p.Choose(); got != full {
		t.Fatal("expected the remaining segment")
	}
}

func TestFIFOZeroUpdateMigrates(t *testing.T) {
	p := NewFIFOZero()
	a := mkSeg(1, 0, 0)
	b := mkSeg(4, 1, 0)
	p.Add(a)
	p.Add(b)
	a.SetSlotInvalid(0)
	p.Update(a)
	if got := p.Choose(); got != a {
		t.Fatal("expected a to migrate to zero-priority queue after going to zero valid")
	}
}

func TestGreedyPicksFewestValid(t *testing.T) {
	p := NewGreedy()
	a := mkSeg(10, 0, 0)
	b := mkSeg(2, 1, 0)
	c := mkSeg(5, 2, 0)
	p.Add(a)
	p.Add(b)
	p.Add(c)
	if got := p.Choose(); got != b {
		t.Fatalf("expected b (fewest valid), got %v", got)
	}
	// Choose peeks; must remove explicitly before re-choosing the same victim.
	p.Remove(b)
	if got := p.Choose(); got != c {
		t.Fatalf("expected c next, got %v", got)
	}
}

func TestGreedyUpdateReorders(t *testing.T) {
	p := NewGreedy()
	a := mkSeg(5, 0, 0)
	b := mkSeg(5, 1, 0)
	p.Add(a)
	p.Add(b)
	a.SetSlotInvalid(0)
	a.SetSlotInvalid(1)
	a.SetSlotInvalid(2)
	p.Update(a)
	if got := p.Choose(); got != a {
		t.Fatal("expected a to become the top pick after dropping valid count")
	}
}

type fakeClock struct{ t uint64 }

func (c *fakeClock) Now() uint64 { return c.t }

func TestCostBenefitPrefersOldLowUtilization(t *testing.T) {
	clk := &fakeClock{t: 100}
	p := NewCostBenefit(clk, 16, nil)
	old := mkSeg(1, 0, 0)   // age 100, u=1/16 -> high score
	young := mkSeg(15, 90, 0) // age 10, u=15/16 -> low score
	p.Add(old)
	p.Add(young)
	if got := p.Choose(); got != old {
		t.Fatal("expected the old, low-utilization segment to win")
	}
}

func TestCostBenefitZeroValidIsInfinite(t *testing.T) {
	clk := &fakeClock{t: 10}
	p := NewCostBenefit(clk, 16, nil)
	zero := mkSeg(0, 5, 0)
	other := mkSeg(1, 0, 0)
	p.Add(zero)
	p.Add(other)
	if got := p.Choose(); got != zero {
		t.Fatal("expected zero-valid segment (infinite score) to win")
	}
}

func TestLambdaHigherScoreWins(t *testing.T) {
	clk := &fakeClock{t: 100}
	p := NewLambda(clk, 16, 4)
	slow := mkSeg(15, 0, 0) // low invalidation rate -> higher (less negative) score
	fast := mkSeg(1, 0, 0)  // high invalidation rate -> lower score
	p.Add(slow)
	p.Add(fast)
	if got := p.Choose(); got != slow {
		t.Fatal("expected the slower-invalidating segment to be preferred by Lambda's sign convention")
	}
}

func TestSelectiveFIFOReverseOrderDefault(t *testing.T) {
	p := NewSelectiveFIFO(3, 16, false, false)
	low := mkSeg(4, 0, 0)
	high := mkSeg(4, 1, 2)
	p.Add(low)
	p.Add(high)
	if got := p.Choose(); got != high {
		t.Fatal("expected highest-class stream scanned first in default (non-reverse) mode")
	}
}

func TestSelectiveFIFOChooseStream(t *testing.T) {
	p := NewSelectiveFIFO(3, 16, false, false)
	a := mkSeg(4, 0, 1)
	b := mkSeg(4, 1, 1)
	p.Add(a)
	p.Add(b)
	if got := p.ChooseStream(1); got != a {
		t.Fatal("expected oldest segment in stream 1")
	}
}

func TestSelectiveFIFOGCModeRotatesHighUtilization(t *testing.T) {
	p := NewSelectiveFIFO(2, 16, false, true)
	hot := mkSeg(15, 0, 0) // above 0.85 ceiling
	cold := mkSeg(1, 1, 0)
	p.Add(hot)
	p.Add(cold)
	if got := p.Choose(); got != cold {
		t.Fatal("expected GC mode to skip the high-utilization head and pick cold")
	}
}

func TestMultiQueueBucketsByAge(t *testing.T) {
	p := NewMultiQueue(10, 4)
	young := mkSeg(4, 95, 0) // age 5 at now=100 -> bucket 0
	old := mkSeg(4, 50, 0)   // age 50 -> bucket 5 capped to 3
	p.AddAt(young, 100)
	p.AddAt(old, 100)
	if got := p.Choose(); got != old {
		t.Fatal("expected oldest bucket scanned first")
	}
	if got := p.Choose(); got != young {
		t.Fatal("expected remaining segment next")
	}
}

func TestKthCostBenefitRankZeroIsBest(t *testing.T) {
	clk := &fakeClock{t: 100}
	p := NewKthCostBenefit(clk, 16, nil, nil)
	best := mkSeg(1, 0, 0)
	mid := mkSeg(8, 50, 0)
	worst := mkSeg(15, 90, 0)
	p.Add(worst)
	p.Add(best)
	p.Add(mid)
	if got := p.Choose(); got != best {
		t.Fatal("expected rank-0 choose to return the highest-score segment")
	}
}

func TestKthCostBenefitChooseAtRank(t *testing.T) {
	clk := &fakeClock{t: 100}
	p := NewKthCostBenefit(clk, 16, nil, nil)
	best := mkSeg(1, 0, 0)
	mid := mkSeg(8, 50, 0)
	worst := mkSeg(15, 90, 0)
	p.Add(best)
	p.Add(mid)
	p.Add(worst)
	if got := p.ChooseAt(1); got != mid {
		t.Fatalf("expected rank 1 to be the middle-scored segment, got %v", got)
	}
}

func TestKthCostBenefitChooseNextFallsBackFirstTime(t *testing.T) {
	clk := &fakeClock{t: 100}
	p := NewKthCostBenefit(clk, 16, nil, nil)
	best := mkSeg(1, 0, 0)
	p.Add(best)
	if got := p.ChooseNext(); got != best {
		t.Fatal("expected ChooseNext to fall back to Choose before anything has been evicted")
	}
}
