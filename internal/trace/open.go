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
	"fmt"
	"os"
	"time"
)

// Open builds a Reader for path in the given format, filtered by
// rwPolicy and optionally wrapped for follow mode.
func Open(path, format string, rwPolicy RWPolicy, follow bool, followTimeout time.Duration) (Reader, error) {
	f, err := os.Open(path) //nolint:gosec // path is operator-supplied
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}

	var base Reader
	switch format {
	case "blktrace":
		base = NewBlktraceReader(f)
	default:
		base = NewCSVReader(f)
	}

	if follow {
		fr, err := NewFollowReader(base, path, followTimeout)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("enabling follow mode: %w", err)
		}
		base = fr
	}

	return NewFilteredReader(base, rwPolicy), nil
}
