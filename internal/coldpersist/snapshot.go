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

package coldpersist

import (
	"fmt"

	"github.com/launix-de/cachesim/internal/simerrors"
)

// FTL is the subset of coldftl.FTL's surface a snapshot needs, kept
// narrow so this package doesn't import coldftl directly.
type FTL interface {
	Snapshot() ([]byte, error)
	Restore(data []byte) error
}

// Save encodes ftl's state, compresses it with codec, and writes it to
// uri. Called once at the end of a run.
func Save(ftl FTL, uri, codec string) error {
	raw, err := ftl.Snapshot()
	if err != nil {
		return &simerrors.SnapshotError{URI: uri, Err: fmt.Errorf("encoding snapshot: %w", err)}
	}
	compressed, err := Compress(codec, raw)
	if err != nil {
		return &simerrors.SnapshotError{URI: uri, Err: err}
	}
	backend, err := Open(uri)
	if err != nil {
		return err
	}
	if err := backend.WriteSnapshot(compressed); err != nil {
		return err
	}
	return nil
}

// Load reads and decodes a snapshot from uri into ftl. Called once at
// startup when --cold_snapshot_uri is set.
func Load(ftl FTL, uri, codec string) error {
	backend, err := Open(uri)
	if err != nil {
		return err
	}
	compressed, err := backend.ReadSnapshot()
	if err != nil {
		return err
	}
	raw, err := Decompress(codec, compressed)
	if err != nil {
		return &simerrors.SnapshotError{URI: uri, Err: err}
	}
	if err := ftl.Restore(raw); err != nil {
		return &simerrors.SnapshotError{URI: uri, Err: fmt.Errorf("restoring snapshot: %w", err)}
	}
	return nil
}
