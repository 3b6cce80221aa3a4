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

// Package statsink fans the periodic stats-log milestone out to
// optional external subscribers (a MySQL table, a live websocket
// dashboard) without letting either affect the run itself: a
// subscriber failure is logged and dropped, never propagated back
// into LogCache's own counters or GC decisions.
package statsink

import (
	"github.com/launix-de/cachesim/internal/simerrors"
	"github.com/launix-de/cachesim/internal/simlog"
)

// RunStats mirrors one stats-log milestone line (spec.md §6), plus the
// run id every row is tagged with (SPEC_FULL.md §4.17).
type RunStats struct {
	RunID                    string
	InvalidateBlocks         uint64
	CompactedBlocks          uint64
	GlobalValidBlocks        uint64
	WriteSizeToCache         uint64
	EvictedBlocks            uint64
	WriteHitSize             uint64
	TotalCacheSize           uint64
	ReinsertBlocks           uint64
	ReadBlocksInPartialWrite uint64
	WriteAmplification       float64
}

// Subscriber receives every RunStats milestone. Publish errors are
// non-fatal: the caller logs them and keeps running.
type Subscriber interface {
	Name() string
	Publish(stats RunStats) error
	Close() error
}

// Fanout holds zero or more Subscribers, constructed only for the
// sinks the driver actually enabled.
type Fanout struct {
	subs []Subscriber
	log  simlog.Logger
}

// NewFanout builds a Fanout that logs (but never propagates) publish
// errors through log.
func NewFanout(log simlog.Logger, subs ...Subscriber) *Fanout {
	if log == nil {
		log = simlog.Nop{}
	}
	return &Fanout{subs: subs, log: log}
}

// Publish pushes stats to every subscriber, isolating failures.
func (f *Fanout) Publish(stats RunStats) {
	for _, s := range f.subs {
		if err := s.Publish(stats); err != nil {
			f.log.Warnf("%v", &simerrors.SinkError{Sink: s.Name(), Err: err})
		}
	}
}

// Close shuts down every subscriber, collecting but not stopping on
// individual errors.
func (f *Fanout) Close() {
	for _, s := range f.subs {
		if err := s.Close(); err != nil {
			f.log.Warnf("%v", &simerrors.SinkError{Sink: s.Name(), Err: err})
		}
	}
}
