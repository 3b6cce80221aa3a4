package main

import (
	"bytes"
	"testing"

	"github.com/launix-de/cachesim/internal/logcache"
	"github.com/launix-de/cachesim/internal/simlog"
	"github.com/launix-de/cachesim/internal/trace"
)

func TestRecordToItemsAlignedSingleBlock(t *testing.T) {
	rec := trace.Record{OffsetBytes: 4096, SizeBytes: 4096, Op: trace.OpWrite}
	items := recordToItems(rec, 4096)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if sz, ok := items[1]; !ok || sz != 4096 {
		t.Fatalf("expected key 1 -> 4096, got %v (present=%v)", sz, ok)
	}
}

func TestRecordToItemsSpansMultipleBlocks(t *testing.T) {
	rec := trace.Record{OffsetBytes: 0, SizeBytes: 4096 * 3, Op: trace.OpWrite}
	items := recordToItems(rec, 4096)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for k := uint64(0); k < 3; k++ {
		if sz := items[k]; sz != 4096 {
			t.Fatalf("key %d: got size %d, want 4096", k, sz)
		}
	}
}

func TestRecordToItemsUnalignedTrailingPartialBlock(t *testing.T) {
	rec := trace.Record{OffsetBytes: 0, SizeBytes: 4096 + 100, Op: trace.OpWrite}
	items := recordToItems(rec, 4096)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0] != 4096 {
		t.Fatalf("first block should be full, got %d", items[0])
	}
	if items[1] != 100 {
		t.Fatalf("trailing partial block should be 100 bytes, got %d", items[1])
	}
}

func TestRecordToItemsZeroSizeIsNil(t *testing.T) {
	rec := trace.Record{OffsetBytes: 0, SizeBytes: 0, Op: trace.OpWrite}
	if items := recordToItems(rec, 4096); items != nil {
		t.Fatalf("expected nil items for a zero-size record, got %v", items)
	}
}

func newTestDriver(t *testing.T) *driver {
	t.Helper()
	cfg := logcache.DefaultConfig()
	cfg.BlockSize = 4096
	cfg.CacheSizeBytes = 4 * logcache.DefaultSegmentBytes
	cfg.ColdCapacityBytes = 64 * 1024 * 1024
	cache, err := logcache.New(cfg, nil, nil)
	if err != nil {
		t.Fatalf("logcache.New: %v", err)
	}
	var waf, stat bytes.Buffer
	d := newDriver(nil, cache, simlog.Nop{}, nil, "test-run", &waf, &stat)
	d.statMilestoneSize = 64 * 1024 // small, so a handful of records cross it in a test
	return d
}

func TestApplyRecordAdvancesStatsAndMilestones(t *testing.T) {
	d := newTestDriver(t)
	waf := d.wafOut.(*bytes.Buffer)
	stat := d.statOut.(*bytes.Buffer)

	for i := 0; i < 32; i++ {
		rec := trace.Record{OffsetBytes: uint64(i) * 4096, SizeBytes: 4096, Op: trace.OpWrite}
		if err := d.applyRecord(rec); err != nil {
			t.Fatalf("applyRecord %d: %v", i, err)
		}
	}

	stats := d.cache.Stats()
	if stats.WriteSizeToCache != 32*4096 {
		t.Fatalf("write_size_to_cache = %d, want %d", stats.WriteSizeToCache, 32*4096)
	}
	if stat.Len() == 0 {
		t.Fatal("expected at least one stats-log milestone line once 64KiB was crossed")
	}
	_ = waf // waf milestone (10 GiB) is far out of reach in this test; absence is expected
}
