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
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/launix-de/cachesim/internal/simerrors"
)

func bytesReader(data []byte) io.Reader { return bytes.NewReader(data) }

// FileBackend stores the snapshot as a single file on local disk,
// grounded on storage/persistence-files.go's plain os.ReadFile/
// os.WriteFile column storage. Writes go through natefinch/atomic so a
// crash mid-snapshot never leaves a truncated file behind.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend writing to path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) WriteSnapshot(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return &simerrors.SnapshotError{URI: "file://" + b.path, Err: err}
	}
	if err := atomic.WriteFile(b.path, bytesReader(data)); err != nil {
		return &simerrors.SnapshotError{URI: "file://" + b.path, Err: err}
	}
	return nil
}

func (b *FileBackend) ReadSnapshot() ([]byte, error) {
	data, err := os.ReadFile(b.path) //nolint:gosec // path is operator-supplied
	if err != nil {
		return nil, &simerrors.SnapshotError{URI: "file://" + b.path, Err: err}
	}
	return data, nil
}
