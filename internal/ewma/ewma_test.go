package ewma

import (
	"math"
	"testing"
)

func TestEwmaFirstSampleIsValue(t *testing.T) {
	e := FromHalfLifeBlocks(10, false)
	if e.HasValue() {
		t.Fatal("expected no value before first update")
	}
	e.Update(5)
	if !e.HasValue() {
		t.Fatal("expected value after first update")
	}
	if e.Value() != 5 {
		t.Fatalf("expected first sample to set value directly, got %v", e.Value())
	}
}

func TestEwmaConvergesTowardConstantInput(t *testing.T) {
	e := FromHalfLifeBlocks(5, false)
	for i := 0; i < 500; i++ {
		e.Update(10)
	}
	if math.Abs(e.Value()-10) > 1e-6 {
		t.Fatalf("expected convergence to 10, got %v", e.Value())
	}
}

func TestEwmaBiasCorrectionPullsTowardSample(t *testing.T) {
	uncorrected := FromHalfLifeBlocks(20, false)
	corrected := FromHalfLifeBlocks(20, true)
	uncorrected.Update(100)
	corrected.Update(100)
	if uncorrected.Value() != 100 {
		t.Fatalf("first sample should equal itself regardless of correction, got %v", uncorrected.Value())
	}
	if corrected.Value() != 100 {
		t.Fatalf("bias-corrected first sample should also equal the sample, got %v", corrected.Value())
	}
}

func TestEwmaUpdateWithUnitsLargerSpanWeighsMore(t *testing.T) {
	a := FromHalfLifeBlocks(10, false)
	b := FromHalfLifeBlocks(10, false)
	a.Update(0)
	b.Update(0)
	a.UpdateWithUnits(100, 1)
	b.UpdateWithUnits(100, 50)
	if !(b.Value() > a.Value()) {
		t.Fatalf("expected larger elapsed span to move estimate further: a=%v b=%v", a.Value(), b.Value())
	}
}

func TestRatioFromCumulativeCounters(t *testing.T) {
	r := RatioFromHalfLifeBlocks(10, false)
	r.UpdateFromCumulative(0, 0)
	if r.HasValue() {
		t.Fatal("baseline-only call should not produce a value")
	}
	r.UpdateFromCumulative(5, 10)
	if !r.HasValue() {
		t.Fatal("expected value after first real delta")
	}
	if math.Abs(r.Value()-0.5) > 1e-9 {
		t.Fatalf("expected ratio 0.5, got %v", r.Value())
	}
}

func TestRatioIgnoresZeroDenomDelta(t *testing.T) {
	r := RatioFromHalfLifeBlocks(10, false)
	r.UpdateFromCumulative(0, 0)
	r.UpdateFromCumulative(3, 10)
	v := r.Value()
	r.UpdateFromCumulative(6, 10) // same denom -> zero delta, ignored
	if r.Value() != v {
		t.Fatalf("expected no change on zero denom delta: before=%v after=%v", v, r.Value())
	}
}
