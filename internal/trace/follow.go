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

package trace

import (
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FollowReader wraps a plain *os.File so Next blocks past EOF, waiting
// for fsnotify Write events on the file instead of returning ok=false,
// until timeout has elapsed with no new bytes appended. Used for
// --follow, where the trace file is a live capture still being
// written.
type FollowReader struct {
	inner   Reader
	watcher *fsnotify.Watcher
	timeout time.Duration
}

// NewFollowReader builds a follow-mode reader around inner, watching
// path for append growth. Callers construct inner (a CSVReader or
// BlktraceReader) over the same file handle.
func NewFollowReader(inner Reader, path string, timeout time.Duration) (*FollowReader, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}
	return &FollowReader{inner: inner, watcher: w, timeout: timeout}, nil
}

func (f *FollowReader) Next() (Record, bool, error) {
	for {
		rec, ok, err := f.inner.Next()
		if ok {
			return rec, ok, err
		}
		// EOF: wait for the file to grow or time out.
		select {
		case ev, open := <-f.watcher.Events:
			if !open {
				return Record{}, false, nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
		case werr, open := <-f.watcher.Errors:
			if open && werr != nil {
				return Record{}, false, werr
			}
		case <-time.After(f.timeout):
			return Record{}, false, nil
		}
	}
}

func (f *FollowReader) Close() error {
	f.watcher.Close()
	return f.inner.Close()
}

var _ io.Closer = (*FollowReader)(nil)
