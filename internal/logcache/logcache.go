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

// Package logcache composes SegmentStore, LocationIndex, a Policy, an
// optional Classifier, ColdTierFTL and GhostCache into the log-structured
// cache itself: BatchInsert, the GC loop, the adaptive threshold
// feedback, and eviction accounting. It is the single place all of
// those collaborators are mutated from; everything else in the
// simulator either feeds it trace records or reads its counters.
package logcache

import (
	"fmt"
	"io"

	"github.com/launix-de/cachesim/internal/classifier"
	"github.com/launix-de/cachesim/internal/coldftl"
	"github.com/launix-de/cachesim/internal/ewma"
	"github.com/launix-de/cachesim/internal/ghostcache"
	"github.com/launix-de/cachesim/internal/histogram"
	"github.com/launix-de/cachesim/internal/locindex"
	"github.com/launix-de/cachesim/internal/policy"
	"github.com/launix-de/cachesim/internal/segstore"
	"github.com/launix-de/cachesim/internal/simerrors"
	"github.com/launix-de/cachesim/internal/simlog"
)

// DefaultSegmentBytes is the segment size used when none is otherwise
// configurable (spec.md's GLOSSARY default; no CLI flag exposes this,
// so it is fixed here rather than invented as a new flag — see
// DESIGN.md).
const DefaultSegmentBytes = 32 * 1024 * 1024

// Config carries every knob LogCache needs beyond what simconfig.Config
// exposes on the CLI directly; cmd/cache_sim translates one into the
// other.
type Config struct {
	BlockSize         int64
	CacheSizeBytes    int64
	CachePolicy       string
	InitialValidRatio float64

	// Classifier selects the optional StreamClassifier (spec.md §4.4):
	// "", "hotcold", "multihotcold", or "sepbit". Empty leaves writes
	// routed purely by the caller's streamID, as before this field
	// existed.
	Classifier string
	HardLimitValidRatio float64
	LowWaterRatio     float64

	// EvictedBlockSize is W in spec.md §4.5.4: the alignment window a
	// surface eviction grooms at once. The authoritative value must
	// come from Config, not a constant (spec.md §9's open question) —
	// BypassBlocksThreshold travels the same way.
	EvictedBlockSize      int
	BypassBlocksThreshold int

	GhostCacheCapacity   int
	FeedbackSampleBlocks uint64
	FeedbackAlpha        float64

	ColdCapacityBytes      int64
	ColdNANDBlockSize      int64
	ColdGCTriggerThreshold int

	HistogramGranularity uint64
	HistogramBuckets     int
}

// DefaultConfig fills in every field SPEC_FULL.md's CLI surface doesn't
// expose, leaving the caller to override BlockSize/CacheSizeBytes/
// CachePolicy/ColdCapacityBytes/InitialValidRatio/BypassBlocksThreshold
// from simconfig.Config.
func DefaultConfig() Config {
	return Config{
		BlockSize:              4096,
		CachePolicy:            "fifo",
		InitialValidRatio:      0.5,
		HardLimitValidRatio:    0.95,
		LowWaterRatio:          0.05,
		EvictedBlockSize:       1,
		GhostCacheCapacity:     1024,
		FeedbackSampleBlocks:   1000,
		FeedbackAlpha:          6.73,
		ColdNANDBlockSize:      2 * 1024 * 1024,
		ColdGCTriggerThreshold: 8,
		HistogramGranularity:   1,
		HistogramBuckets:       256,
	}
}

// Counters mirrors the stats-log milestone fields of spec.md §6, minus
// the run id (cmd/cache_sim attaches that when forwarding to statsink).
type Counters struct {
	InvalidateBlocks         uint64
	CompactedBlocks          uint64
	GlobalValidBlocks        uint64
	WriteSizeToCache         uint64
	EvictedBlocks            uint64
	WriteHitSize             uint64
	TotalCacheSize           uint64
	ReinsertBlocks           uint64
	ReadBlocksInPartialWrite uint64
	WriteAmplification       float64
}

// LogCache is the single-threaded cooperative core described in
// spec.md §5: every mutable collaborator is owned here and touched only
// from these methods.
type LogCache struct {
	cfg Config
	log simlog.Logger

	blockSize        int64
	blocksPerSegment int
	totalBlocks      int
	lowWaterSegments int

	store      *segstore.Store
	index      *locindex.Index
	evictor    policy.Policy
	compactor  policy.Policy // same instance as evictor for cost-benefit-family policies, nil otherwise
	classifier classifier.Classifier
	cold       *coldftl.FTL
	ghost      *ghostcache.GhostCache

	activeByStream map[int32]*segstore.Segment

	now uint64

	targetValidRatio float64
	hardLimit        float64
	alpha            float64

	feedbackSampleBlocks uint64
	blocksSinceFeedback  uint64
	blocksSinceCompare   uint64
	rC, rE, rG           *ewma.Ratio

	evictedBlockSize int

	ageHist        *histogram.Histogram
	victimHist     *histogram.Histogram
	collateralHist *histogram.Histogram

	// onCollect, when set, is called with a segment's class and
	// ValidCnt at the moment it is chosen for collection — a test hook
	// for spec.md §8 scenario 3 (per-class average valid_cnt at
	// collection time), never set in production use.
	onCollect func(class int32, validCnt int)

	invalidateBlocks         uint64
	compactedBlocks          uint64
	writeSizeToCache         uint64
	evictedBlocks            uint64
	writeHitSize             uint64
	reinsertBlocks           uint64
	readBlocksInPartialWrite uint64
}

// New constructs a LogCache from cfg. log may be nil (defaults to a
// no-op logger); histSink receives the three histogram dumps on Close.
func New(cfg Config, log simlog.Logger, histSink histogramSink) (*LogCache, error) {
	if log == nil {
		log = simlog.Nop{}
	}
	if cfg.BlockSize <= 0 || cfg.CacheSizeBytes <= 0 {
		return nil, &simerrors.ConfigError{Field: "block_size, cache_size_bytes", Reason: "must be positive"}
	}
	blocksPerSegment := int(DefaultSegmentBytes / cfg.BlockSize)
	if blocksPerSegment <= 0 {
		blocksPerSegment = 1
	}
	numSegments := int(cfg.CacheSizeBytes / (cfg.BlockSize * int64(blocksPerSegment)))
	if numSegments <= 0 {
		return nil, &simerrors.ConfigError{Field: "cache_size_bytes", Reason: "too small to hold even one segment"}
	}
	totalBlocks := numSegments * blocksPerSegment

	lowWater := int(float64(numSegments)*cfg.LowWaterRatio + 0.999999)
	if lowWater < 1 {
		lowWater = 1
	}
	if lowWater >= numSegments {
		lowWater = numSegments - 1
	}

	c := &LogCache{
		cfg:                  cfg,
		log:                  log,
		blockSize:            cfg.BlockSize,
		blocksPerSegment:      blocksPerSegment,
		totalBlocks:          totalBlocks,
		lowWaterSegments:     lowWater,
		store:                segstore.NewStore(numSegments, blocksPerSegment),
		index:                locindex.New(),
		ghost:                ghostcache.New(cfg.GhostCacheCapacity),
		activeByStream:       make(map[int32]*segstore.Segment),
		targetValidRatio:     cfg.InitialValidRatio,
		hardLimit:            cfg.HardLimitValidRatio,
		alpha:                cfg.FeedbackAlpha,
		feedbackSampleBlocks: cfg.FeedbackSampleBlocks,
		evictedBlockSize:     cfg.EvictedBlockSize,
	}
	if c.evictedBlockSize <= 0 {
		c.evictedBlockSize = 1
	}

	c.rC = ewma.RatioFromHalfLifeBlocks(float64(cfg.FeedbackSampleBlocks)*4, false)
	c.rE = ewma.RatioFromHalfLifeBlocks(float64(cfg.FeedbackSampleBlocks)*4, false)
	c.rG = ewma.RatioFromHalfLifeBlocks(float64(cfg.FeedbackSampleBlocks)*4, false)

	evictor, compactor, err := newPolicy(cfg.CachePolicy, policy.ClockFunc(c.Now), blocksPerSegment)
	if err != nil {
		return nil, err
	}
	c.evictor = evictor
	c.compactor = compactor

	cls, err := newClassifier(cfg.Classifier)
	if err != nil {
		return nil, err
	}
	c.classifier = cls

	if cfg.ColdCapacityBytes <= 0 {
		return nil, &simerrors.ConfigError{Field: "cold_capacity", Reason: "must be positive"}
	}
	nandBlockSize := cfg.ColdNANDBlockSize
	if nandBlockSize <= 0 {
		nandBlockSize = 2 * 1024 * 1024
	}
	numColdBlocks := int(cfg.ColdCapacityBytes / nandBlockSize)
	if numColdBlocks < 2 {
		numColdBlocks = 2
	}
	gcTrigger := cfg.ColdGCTriggerThreshold
	if gcTrigger <= 0 {
		gcTrigger = 8
	}
	c.cold = coldftl.New(numColdBlocks, int(nandBlockSize), int(cfg.BlockSize), gcTrigger)

	var sink histogramSink = histSink
	if sink == nil {
		sink = discardSink{}
	}
	gran := cfg.HistogramGranularity
	if gran == 0 {
		gran = 1
	}
	buckets := cfg.HistogramBuckets
	if buckets <= 0 {
		buckets = 256
	}
	c.ageHist = histogram.New("eviction_age", gran, buckets, sink.Writer("eviction_age"))
	c.victimHist = histogram.New("victim_evicted_blocks", 1, buckets, sink.Writer("victim_evicted_blocks"))
	c.collateralHist = histogram.New("collateral_group_size", 1, buckets, sink.Writer("collateral_group_size"))

	return c, nil
}

// histogramSink hands each Histogram its dump destination; cmd/cache_sim
// implements this over the configured log files, tests over an
// in-memory buffer.
type histogramSink interface {
	Writer(name string) io.Writer
}

type discardSink struct{}

func (discardSink) Writer(string) io.Writer { return discardWriter{} }

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Now implements policy.Clock.
func (c *LogCache) Now() uint64 { return c.now }

// Exists reports whether k currently has a live mapping.
func (c *LogCache) Exists(k uint64) bool {
	_, ok := c.index.Get(k)
	return ok
}

// Size returns total cache capacity in bytes.
func (c *LogCache) Size() int64 { return int64(c.totalBlocks) * c.blockSize }

// BlockSize returns the configured block size in bytes.
func (c *LogCache) BlockSize() int64 { return c.blockSize }

// ColdFTL exposes the cold tier for snapshot save/restore at process
// start/end (coldpersist never touches it mid-run, per SPEC_FULL.md §5).
func (c *LogCache) ColdFTL() *coldftl.FTL { return c.cold }

// Stats returns the current counters, computing GlobalValidBlocks and
// WriteAmplification live from the index/cold-tier rather than tracking
// them as separate running counters (they are always derivable, and
// deriving them avoids a second place they could drift from the truth).
func (c *LogCache) Stats() Counters {
	waf := c.cold.WriteAmplification()
	return Counters{
		InvalidateBlocks:         c.invalidateBlocks,
		CompactedBlocks:          c.compactedBlocks,
		GlobalValidBlocks:        uint64(c.index.Len()),
		WriteSizeToCache:         c.writeSizeToCache,
		EvictedBlocks:            c.evictedBlocks,
		WriteHitSize:             c.writeHitSize,
		TotalCacheSize:           uint64(c.Size()),
		ReinsertBlocks:           c.reinsertBlocks,
		ReadBlocksInPartialWrite: c.readBlocksInPartialWrite,
		WriteAmplification:       waf,
	}
}

// DumpSegment renders segment id's slot table as text, for the
// replserver "segment <id>" command.
func (c *LogCache) DumpSegment(id int) (string, error) {
	seg, err := c.store.Get(id)
	if err != nil {
		return "", err
	}
	out := fmt.Sprintf("segment %d: class=%d create_ts=%d write_ptr=%d valid_cnt=%d\n",
		id, seg.ClassNum, seg.CreateTs, seg.WritePtr, seg.ValidCnt)
	for i, slot := range seg.Slots {
		if i >= seg.WritePtr && !slot.Valid {
			continue
		}
		out += fmt.Sprintf("  [%d] key=%d valid=%v create_ts=%d\n", i, slot.Key, slot.Valid, slot.CreateTs)
	}
	return out, nil
}

// Close dumps every histogram to its sink, matching spec.md §6's
// "upon destruction, each Histogram dumps..." behavior.
func (c *LogCache) Close() {
	c.ageHist.Dump()
	c.victimHist.Dump()
	c.collateralHist.Dump()
}
