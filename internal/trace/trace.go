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

// Package trace reads I/O traces in the CSV and blktrace wire formats
// into a common Record stream. Modeled on the teacher's channel-fed
// line scanner (storage/csv.go: LoadCSV): a goroutine scans lines into
// a buffered channel so parsing overlaps with file I/O.
package trace

// OpKind distinguishes read and write operations, collapsing the
// "-S" (synchronous) suffix the CSV format allows since the simulator
// does not model I/O latency.
type OpKind int

const (
	OpRead OpKind = iota
	OpWrite
)

// Record is one trace entry, independent of wire format.
type Record struct {
	DevID       uint32
	Op          OpKind
	OffsetBytes uint64
	SizeBytes   uint64
	Timestamp   uint64
}

// Reader yields trace records one at a time. Next returns ok=false
// once the trace is exhausted; a non-nil err alongside ok=true means
// the row was malformed and has already been skipped (the caller may
// log it, but replay continues).
type Reader interface {
	Next() (Record, bool, error)
	Close() error
}

// RWPolicy filters records before they reach LogCache.
type RWPolicy int

const (
	RWAll RWPolicy = iota
	RWWriteOnly
	RWReadOnly
)

// ParseRWPolicy parses the --rw_policy flag value.
func ParseRWPolicy(s string) RWPolicy {
	switch s {
	case "write-only":
		return RWWriteOnly
	case "read-only":
		return RWReadOnly
	default:
		return RWAll
	}
}

// Admits reports whether rec passes the policy filter.
func (p RWPolicy) Admits(rec Record) bool {
	switch p {
	case RWWriteOnly:
		return rec.Op == OpWrite
	case RWReadOnly:
		return rec.Op == OpRead
	default:
		return true
	}
}

// FilteredReader wraps a Reader, skipping records the policy rejects.
type FilteredReader struct {
	inner  Reader
	policy RWPolicy
}

// NewFilteredReader wraps inner so Next only ever returns records
// admitted by policy.
func NewFilteredReader(inner Reader, policy RWPolicy) *FilteredReader {
	return &FilteredReader{inner: inner, policy: policy}
}

func (f *FilteredReader) Next() (Record, bool, error) {
	for {
		rec, ok, err := f.inner.Next()
		if !ok {
			return Record{}, false, err
		}
		if err != nil {
			return rec, true, err
		}
		if f.policy.Admits(rec) {
			return rec, true, nil
		}
	}
}

func (f *FilteredReader) Close() error { return f.inner.Close() }
