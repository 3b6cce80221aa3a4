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

// Package ewma implements an exponentially-weighted moving average over
// unevenly-spaced samples, and EwmaRatio, the numer/denom-ratio tracker
// the ghost-cache feedback loop uses to compare compaction vs. eviction
// rates. Grounded on the original ssd_waf Ewma/EwmaRatio types
// (emwa.h/.cpp, emwa_ratio.h).
package ewma

import (
	"math"
)

const (
	epsTiny   = 1e-12
	prodFloor = 1e-15
	ln2       = 0.69314718055994530942
)

// Ewma tracks a moving average with a configurable half-life, optionally
// bias-corrected for the early-sample warm-up transient.
type Ewma struct {
	alpha             float64
	biasCorrection    bool
	baseIntervalUnits float64
	initialized       bool
	m                 float64
	steps             uint64
	biasProd          float64
}

// FromHalfLifeBlocks builds an Ewma whose half-life is given in "blocks"
// (the cache's logical time unit), matching Ewma::FromHalfLifeBlocks.
func FromHalfLifeBlocks(halfLifeBlocks float64, biasCorrection bool) *Ewma {
	return FromHalfLife(halfLifeBlocks, biasCorrection, 1.0)
}

// FromHalfLife builds an Ewma with an arbitrary base unit; alpha is
// derived as 1 - exp(-ln2 * base/halfLife).
func FromHalfLife(halfLifeUnits float64, biasCorrection bool, baseIntervalUnits float64) *Ewma {
	if halfLifeUnits <= 0 {
		halfLifeUnits = 1
	}
	if baseIntervalUnits <= 0 {
		baseIntervalUnits = 1
	}
	alpha := 1.0 - math.Exp(-ln2*(baseIntervalUnits/halfLifeUnits))
	alpha = clamp(alpha, epsTiny, 1.0)
	return &Ewma{alpha: alpha, biasCorrection: biasCorrection, baseIntervalUnits: baseIntervalUnits, biasProd: 1.0}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Reset clears all accumulated state.
func (e *Ewma) Reset() {
	e.initialized = false
	e.m = 0
	e.steps = 0
	e.biasProd = 1.0
}

// Update advances the average by one base unit.
func (e *Ewma) Update(x float64) {
	e.updateWithAlpha(x, e.alpha)
	e.steps++
	e.biasProd *= 1.0 - e.alpha
}

// UpdateWithUnits advances the average by an arbitrary elapsed number of
// base units, deriving an effective alpha for that span so a sample
// covering many blocks doesn't get the same weight as a one-block sample.
func (e *Ewma) UpdateWithUnits(x, units float64) {
	if units <= 0 {
		return
	}
	k := units / e.baseIntervalUnits
	oneMinusAlpha := 1.0 - e.alpha
	decay := math.Exp(k * math.Log(math.Max(prodFloor, oneMinusAlpha)))
	alphaEff := clamp(1.0-decay, epsTiny, 1.0)
	e.updateWithAlpha(x, alphaEff)
	e.biasProd *= 1.0 - alphaEff
	e.steps++
}

func (e *Ewma) updateWithAlpha(x, alphaEff float64) {
	if !e.initialized {
		e.m = x
		if e.biasCorrection {
			// Zero-started average after one step; Value divides by the
			// same (1 - biasProd) factor and recovers x.
			e.m = x * (1.0 - e.biasProd*(1.0-alphaEff))
		}
		e.initialized = true
		return
	}
	e.m = alphaEff*x + (1.0-alphaEff)*e.m
}

// Value returns the current (optionally bias-corrected) estimate, or NaN
// if no sample has been recorded yet.
func (e *Ewma) Value() float64 {
	if !e.initialized {
		return math.NaN()
	}
	if !e.biasCorrection {
		return e.m
	}
	denom := 1.0 - e.biasProd
	if denom <= prodFloor {
		return e.m
	}
	return e.m / denom
}

// HasValue reports whether any sample has been recorded.
func (e *Ewma) HasValue() bool { return e.initialized }

// Ratio tracks an EWMA of numerInc/denomInc samples, weighted by denomInc,
// and also supports feeding cumulative counters directly (deriving the
// deltas internally), matching EwmaRatio::updateFromCumulative.
type Ratio struct {
	ema         *Ewma
	prevNumer   float64
	prevDenom   float64
	initialized bool
}

// NewRatio wraps the given Ewma as a ratio tracker.
func NewRatio(base *Ewma) *Ratio {
	return &Ratio{ema: base}
}

// RatioFromHalfLifeBlocks is the common constructor used by the
// ghost-cache feedback loop.
func RatioFromHalfLifeBlocks(halfLifeBlocks float64, biasCorrection bool) *Ratio {
	return NewRatio(FromHalfLifeBlocks(halfLifeBlocks, biasCorrection))
}

// Update folds in one (numerInc, denomInc) sample directly.
func (r *Ratio) Update(numerInc, denomInc float64) {
	if denomInc <= 0 {
		return
	}
	r.ema.UpdateWithUnits(numerInc/denomInc, denomInc)
}

// UpdateFromCumulative derives (Δnumer, Δdenom) from cumulative counters
// and folds the result in. The first call only establishes the baseline.
func (r *Ratio) UpdateFromCumulative(numer, denom float64) {
	if !r.initialized {
		r.prevNumer = numer
		r.prevDenom = denom
		r.initialized = true
		return
	}
	dNumer := numer - r.prevNumer
	dDenom := denom - r.prevDenom
	r.prevNumer = numer
	r.prevDenom = denom
	if dDenom > 0 {
		r.Update(dNumer, dDenom)
	}
}

// Value returns the current ratio estimate.
func (r *Ratio) Value() float64 { return r.ema.Value() }

// HasValue reports whether any sample has been folded in.
func (r *Ratio) HasValue() bool { return r.ema.HasValue() }
