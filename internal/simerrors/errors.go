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

// Package simerrors holds the error taxonomy shared by the simulator's
// components: startup-fatal configuration problems, locally-recovered
// trace parse errors, and fatal invariant violations that abort a run.
package simerrors

import "fmt"

// ConfigError marks a missing or invalid CLI/config-file setting.
// Reported at startup; the driver exits with status 1.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// ParseError marks a malformed trace row. The row is skipped and replay
// continues; callers should log it via simlog rather than abort.
type ParseError struct {
	Line   int
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d (%q): %s", e.Line, e.Raw, e.Reason)
}

// InvariantViolation marks a broken core invariant: double-free of a
// segment, an index pointing at an invalid slot, a negative valid count,
// and similar. Fatal: the caller should abort with a stack dump.
type InvariantViolation struct {
	Component string
	Detail    string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Component, e.Detail)
}

// NoFreeSegmentError is raised when GC cannot produce a free segment.
// Fatal: indicates target_valid_ratio is too high or the cache is too
// small relative to the workload.
type NoFreeSegmentError struct {
	FreeCount int
}

func (e *NoFreeSegmentError) Error() string {
	return fmt.Sprintf("no free segment available (free pool size %d)", e.FreeCount)
}

// FTLExhaustionError is raised when the cold-tier FTL's GC cannot reclaim
// any block because its chosen victim is fully valid. Requires upstream
// TRIM; fatal.
type FTLExhaustionError struct {
	BlockID uint64
}

func (e *FTLExhaustionError) Error() string {
	return fmt.Sprintf("cold-tier FTL exhausted: victim block %d is fully valid, no progress possible", e.BlockID)
}

// SinkError wraps a non-fatal statsink publish failure. The caller logs
// it via simlog.Logger.Warnf and continues the run.
type SinkError struct {
	Sink string
	Err  error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Sink, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// SnapshotError wraps a coldpersist backend failure at the explicit
// snapshot load/save call sites in main. Not fatal: main logs a failed
// load as a warning and continues, and logs a failed save at exit.
type SnapshotError struct {
	URI string
	Err error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("cold-tier snapshot %s: %v", e.URI, e.Err)
}

func (e *SnapshotError) Unwrap() error { return e.Err }
