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
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/launix-de/cachesim/internal/simerrors"
)

// CSVReader reads the "dev_id,op,offset_bytes,size_bytes,timestamp"
// wire format: op in {R, RS, W, WS}; blank and #-prefixed lines are
// skipped. A goroutine scans lines into a buffered channel so parsing
// overlaps with the underlying file I/O, the same split the teacher
// uses in storage/csv.go: LoadCSV.
type CSVReader struct {
	closer  io.Closer
	lines   chan string
	lineNo  int
	scanErr error
}

// NewCSVReader starts scanning r in the background.
func NewCSVReader(r io.Reader) *CSVReader {
	cr := &CSVReader{lines: make(chan string, 512)}
	if c, ok := r.(io.Closer); ok {
		cr.closer = c
	}
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)
	go func() {
		for scanner.Scan() {
			cr.lines <- scanner.Text()
		}
		cr.scanErr = scanner.Err()
		close(cr.lines)
	}()
	return cr
}

func (c *CSVReader) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// Next reads until it finds a parseable line or the channel closes.
// Malformed rows are reported once as a ParseError and then skipped,
// so the caller only ever sees ok=false at genuine end-of-trace.
func (c *CSVReader) Next() (Record, bool, error) {
	for line := range c.lines {
		c.lineNo++
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := parseCSVLine(line, c.lineNo)
		if err != nil {
			return Record{}, true, err
		}
		return rec, true, nil
	}
	return Record{}, false, c.scanErr
}

func parseCSVLine(line string, lineNo int) (Record, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 5 {
		return Record{}, &simerrors.ParseError{Line: lineNo, Raw: line, Reason: "expected 5 comma-separated fields"}
	}
	devID, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return Record{}, &simerrors.ParseError{Line: lineNo, Raw: line, Reason: "dev_id: " + err.Error()}
	}
	op, ok := parseCSVOp(fields[1])
	if !ok {
		return Record{}, &simerrors.ParseError{Line: lineNo, Raw: line, Reason: "op must be one of R, RS, W, WS"}
	}
	offset, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return Record{}, &simerrors.ParseError{Line: lineNo, Raw: line, Reason: "offset_bytes: " + err.Error()}
	}
	size, err := strconv.ParseUint(fields[3], 10, 64)
	if err != nil {
		return Record{}, &simerrors.ParseError{Line: lineNo, Raw: line, Reason: "size_bytes: " + err.Error()}
	}
	ts, err := strconv.ParseUint(fields[4], 10, 64)
	if err != nil {
		return Record{}, &simerrors.ParseError{Line: lineNo, Raw: line, Reason: "timestamp: " + err.Error()}
	}
	return Record{
		DevID:       uint32(devID),
		Op:          op,
		OffsetBytes: offset,
		SizeBytes:   size,
		Timestamp:   ts,
	}, nil
}

func parseCSVOp(s string) (OpKind, bool) {
	switch s {
	case "R", "RS":
		return OpRead, true
	case "W", "WS":
		return OpWrite, true
	default:
		return 0, false
	}
}
