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

package main

import (
	"fmt"
	"io"

	"github.com/launix-de/cachesim/internal/logcache"
	"github.com/launix-de/cachesim/internal/simlog"
	"github.com/launix-de/cachesim/internal/statsink"
	"github.com/launix-de/cachesim/internal/trace"
)

// wafMilestoneBytes and statMilestoneBytes gate how often the two text
// logs get a new line, per spec.md §6 ("one line per 10 GiB of cache
// writes" / "per segment-bytes milestone").
const wafMilestoneBytes = 10 * 1024 * 1024 * 1024

// driver replays a trace.Reader through a LogCache, emitting the WAF
// and stats text logs at their respective milestones and fanning every
// stats milestone out to statsink. It also implements replserver.Engine
// so --interactive can step the same loop one record (or n records) at
// a time.
type driver struct {
	reader trace.Reader
	cache  *logcache.LogCache
	log    simlog.Logger
	fanout *statsink.Fanout
	runID  string

	wafOut  io.Writer
	statOut io.Writer

	lastWAFMilestone  uint64
	lastStatMilestone uint64
	statMilestoneSize uint64

	recordsSeen int
	atEOF       bool
}

func newDriver(reader trace.Reader, cache *logcache.LogCache, log simlog.Logger, fanout *statsink.Fanout, runID string, wafOut, statOut io.Writer) *driver {
	return &driver{
		reader:            reader,
		cache:             cache,
		log:               log,
		fanout:            fanout,
		runID:             runID,
		wafOut:            wafOut,
		statOut:           statOut,
		statMilestoneSize: logcache.DefaultSegmentBytes,
	}
}

// Step implements replserver.Engine: replays up to n trace records,
// returning how many were actually consumed (fewer than n at EOF).
func (d *driver) Step(n int) (int, error) {
	done := 0
	for done < n {
		rec, ok, err := d.reader.Next()
		if err != nil {
			d.log.Warnf("trace: %v", err)
		}
		if !ok {
			d.atEOF = true
			break
		}
		if err := d.applyRecord(rec); err != nil {
			return done, err
		}
		done++
		d.recordsSeen++
	}
	return done, nil
}

// applyRecord converts one trace record into a BatchInsert call over
// its covered cache blocks, then checks both log milestones.
func (d *driver) applyRecord(rec trace.Record) error {
	items := recordToItems(rec, d.cache.BlockSize())
	if err := d.cache.BatchInsert(int32(rec.DevID), items, rec.Op); err != nil {
		return err
	}
	d.checkMilestones()
	return nil
}

// recordToItems splits one trace record into block-aligned (key, size)
// pairs, the shape logcache.BatchInsert's items map expects. A record
// spanning a block boundary is split so no item crosses one; the final
// partial block keeps its true (sub-block-size) byte count so
// read_blocks_in_partial_write accounting sees it.
func recordToItems(rec trace.Record, blockSize int64) map[uint64]int64 {
	if rec.SizeBytes == 0 {
		return nil
	}
	bs := uint64(blockSize)
	items := make(map[uint64]int64)
	start := rec.OffsetBytes
	end := rec.OffsetBytes + rec.SizeBytes
	for off := start; off < end; {
		k := off / bs
		blockEnd := (k + 1) * bs
		if blockEnd > end {
			blockEnd = end
		}
		items[k] = int64(blockEnd - off)
		off = blockEnd
	}
	return items
}

// checkMilestones writes a new WAF-log line every 10 GiB of cumulative
// write_size_to_cache and a new stats-log line (plus a statsink
// publish) every DefaultSegmentBytes, per spec.md §6.
func (d *driver) checkMilestones() {
	stats := d.cache.Stats()

	if stats.WriteSizeToCache-d.lastWAFMilestone >= wafMilestoneBytes {
		d.lastWAFMilestone = stats.WriteSizeToCache
		d.writeWAFLine(stats)
	}

	if stats.WriteSizeToCache-d.lastStatMilestone >= d.statMilestoneSize {
		d.lastStatMilestone = stats.WriteSizeToCache
		d.writeStatLine(stats)
		if d.fanout != nil {
			d.fanout.Publish(toRunStats(d.runID, stats))
		}
	}
}

func (d *driver) writeWAFLine(stats logcache.Counters) {
	cold := d.cache.ColdFTL()
	blockSize := d.cache.BlockSize()
	evictedBytes := stats.EvictedBlocks * uint64(blockSize)
	coldHostBytes := cold.HostPageWrites() * uint64(blockSize)
	coldNANDBytes := cold.NANDPageWrites() * uint64(blockSize)
	fmt.Fprintf(d.wafOut, "%d %d %d %d\n", stats.WriteSizeToCache, evictedBytes, coldHostBytes, coldNANDBytes)
}

func (d *driver) writeStatLine(stats logcache.Counters) {
	fmt.Fprintf(d.statOut, "%s invalidate_blocks: %d compacted_blocks: %d global_valid_blocks: %d "+
		"write_size_to_cache: %d evicted_blocks: %d write_hit_size: %d "+
		"total_cache_size: %d reinsert_blocks: %d read_blocks_in_partial_write: %d\n",
		d.runID, stats.InvalidateBlocks, stats.CompactedBlocks, stats.GlobalValidBlocks,
		stats.WriteSizeToCache, stats.EvictedBlocks, stats.WriteHitSize,
		stats.TotalCacheSize, stats.ReinsertBlocks, stats.ReadBlocksInPartialWrite)
}

func toRunStats(runID string, c logcache.Counters) statsink.RunStats {
	return statsink.RunStats{
		RunID:                    runID,
		InvalidateBlocks:         c.InvalidateBlocks,
		CompactedBlocks:          c.CompactedBlocks,
		GlobalValidBlocks:        c.GlobalValidBlocks,
		WriteSizeToCache:         c.WriteSizeToCache,
		EvictedBlocks:            c.EvictedBlocks,
		WriteHitSize:             c.WriteHitSize,
		TotalCacheSize:           c.TotalCacheSize,
		ReinsertBlocks:           c.ReinsertBlocks,
		ReadBlocksInPartialWrite: c.ReadBlocksInPartialWrite,
		WriteAmplification:       c.WriteAmplification,
	}
}

// Stats implements replserver.Engine.
func (d *driver) Stats() statsink.RunStats {
	return toRunStats(d.runID, d.cache.Stats())
}

// DumpSegment implements replserver.Engine.
func (d *driver) DumpSegment(id int) (string, error) {
	return d.cache.DumpSegment(id)
}

// Run drives the trace to completion in non-interactive mode.
func (d *driver) Run() error {
	for !d.atEOF {
		n, err := d.Step(4096)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
	}
	return nil
}
