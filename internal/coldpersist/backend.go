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

// Package coldpersist lets a run optionally snapshot the cold tier's
// page map to a backend at the end of a run and reload one at startup,
// for chained multi-trace experiments. Grounded on the teacher's
// storage.PersistenceEngine (storage/persistence.go): a small
// interface with file, S3, and Ceph/RADOS implementations, here
// narrowed to whole-blob snapshot semantics since the cold tier holds
// a single page map rather than the teacher's per-shard column/log
// layout.
package coldpersist

import (
	"fmt"
	"net/url"

	"github.com/launix-de/cachesim/internal/simerrors"
)

// Backend stores and retrieves one opaque snapshot blob.
type Backend interface {
	WriteSnapshot(data []byte) error
	ReadSnapshot() ([]byte, error)
}

// Open parses uri's scheme (file://, s3://, ceph://) and returns the
// matching Backend.
func Open(uri string) (Backend, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, &simerrors.SnapshotError{URI: uri, Err: fmt.Errorf("parsing snapshot uri: %w", err)}
	}
	switch u.Scheme {
	case "file", "":
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		return NewFileBackend(path), nil
	case "s3":
		return NewS3Backend(u)
	case "ceph":
		return NewCephBackend(u)
	default:
		return nil, &simerrors.SnapshotError{URI: uri, Err: fmt.Errorf("unrecognized snapshot backend scheme %q", u.Scheme)}
	}
}
