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

package coldftl

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const snapshotVersion = 1

// Snapshot encodes the FTL's page-map and free list into a flat binary
// blob, letting a chained multi-trace experiment resume cold-tier
// state across runs (spec.md's cold tier is otherwise pure in-memory).
func (f *FTL) Snapshot() ([]byte, error) {
	var buf bytes.Buffer
	write := func(v any) error { return binary.Write(&buf, binary.LittleEndian, v) }

	if err := write(uint32(snapshotVersion)); err != nil {
		return nil, err
	}
	if err := write(uint32(f.pageSize)); err != nil {
		return nil, err
	}
	if err := write(uint32(len(f.blocks))); err != nil {
		return nil, err
	}
	for _, b := range f.blocks {
		if err := write(uint32(len(b.pages))); err != nil {
			return nil, err
		}
		if err := write(uint32(b.writePtr)); err != nil {
			return nil, err
		}
		if err := write(uint32(b.validCnt)); err != nil {
			return nil, err
		}
		for _, p := range b.pages {
			if err := write(p.lpn); err != nil {
				return nil, err
			}
			validByte := byte(0)
			if p.valid {
				validByte = 1
			}
			if err := write(validByte); err != nil {
				return nil, err
			}
		}
	}

	if err := write(uint32(len(f.free))); err != nil {
		return nil, err
	}
	for _, b := range f.free {
		if err := write(uint32(b.id)); err != nil {
			return nil, err
		}
	}

	if err := write(uint32(len(f.activeByStream))); err != nil {
		return nil, err
	}
	for stream, b := range f.activeByStream {
		if err := write(int32(stream)); err != nil {
			return nil, err
		}
		if err := write(uint32(b.id)); err != nil {
			return nil, err
		}
	}

	if err := write(uint64(f.hostPageWrites)); err != nil {
		return nil, err
	}
	if err := write(uint64(f.nandPageWrites)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Restore replaces f's state with a snapshot previously produced by
// Snapshot. The FTL's geometry (block/page counts) must already match;
// Restore only repopulates mapping state, not geometry.
func (f *FTL) Restore(data []byte) error {
	r := bytes.NewReader(data)
	read := func(v any) error { return binary.Read(r, binary.LittleEndian, v) }

	var version, pageSize, numBlocks uint32
	if err := read(&version); err != nil {
		return fmt.Errorf("reading snapshot version: %w", err)
	}
	if version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", version)
	}
	if err := read(&pageSize); err != nil {
		return fmt.Errorf("reading page size: %w", err)
	}
	if err := read(&numBlocks); err != nil {
		return fmt.Errorf("reading block count: %w", err)
	}
	if int(numBlocks) != len(f.blocks) {
		return fmt.Errorf("snapshot has %d blocks, FTL has %d: geometry mismatch", numBlocks, len(f.blocks))
	}

	f.lpnToPPN = make(map[uint64]uint64)
	for i := 0; i < int(numBlocks); i++ {
		var numPages, writePtr, validCnt uint32
		if err := read(&numPages); err != nil {
			return fmt.Errorf("block %d: reading page count: %w", i, err)
		}
		if err := read(&writePtr); err != nil {
			return fmt.Errorf("block %d: reading write ptr: %w", i, err)
		}
		if err := read(&validCnt); err != nil {
			return fmt.Errorf("block %d: reading valid count: %w", i, err)
		}
		b := f.blocks[i]
		if int(numPages) != len(b.pages) {
			return fmt.Errorf("block %d has %d pages, FTL has %d: geometry mismatch", i, numPages, len(b.pages))
		}
		b.writePtr = int(writePtr)
		b.validCnt = int(validCnt)
		for p := 0; p < int(numPages); p++ {
			var lpn uint64
			var validByte byte
			if err := read(&lpn); err != nil {
				return fmt.Errorf("block %d page %d: reading lpn: %w", i, p, err)
			}
			if err := read(&validByte); err != nil {
				return fmt.Errorf("block %d page %d: reading valid flag: %w", i, p, err)
			}
			valid := validByte != 0
			b.pages[p] = page{lpn: lpn, valid: valid}
			if valid {
				f.lpnToPPN[lpn] = encodePPN(i, p)
			}
		}
	}

	var numFree uint32
	if err := read(&numFree); err != nil {
		return fmt.Errorf("reading free list length: %w", err)
	}
	f.free = f.free[:0]
	for i := 0; i < int(numFree); i++ {
		var blockID uint32
		if err := read(&blockID); err != nil {
			return fmt.Errorf("reading free list entry %d: %w", i, err)
		}
		f.free = append(f.free, f.blocks[blockID])
	}

	var numActive uint32
	if err := read(&numActive); err != nil {
		return fmt.Errorf("reading active-stream count: %w", err)
	}
	f.activeByStream = make(map[int]*block, numActive)
	for i := 0; i < int(numActive); i++ {
		var stream int32
		var blockID uint32
		if err := read(&stream); err != nil {
			return fmt.Errorf("reading active-stream entry %d: %w", i, err)
		}
		if err := read(&blockID); err != nil {
			return fmt.Errorf("reading active-stream entry %d block id: %w", i, err)
		}
		f.activeByStream[int(stream)] = f.blocks[blockID]
	}

	f.closed = f.closed[:0]
	for _, b := range f.blocks {
		if b.full() {
			isFree := false
			for _, fr := range f.free {
				if fr == b {
					isFree = true
					break
				}
			}
			isActive := false
			for _, ab := range f.activeByStream {
				if ab == b {
					isActive = true
					break
				}
			}
			if !isFree && !isActive {
				f.closed = append(f.closed, b)
			}
		}
	}

	if err := read(&f.hostPageWrites); err != nil {
		return fmt.Errorf("reading host page writes: %w", err)
	}
	if err := read(&f.nandPageWrites); err != nil {
		return fmt.Errorf("reading nand page writes: %w", err)
	}

	return nil
}
