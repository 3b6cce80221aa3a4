package classifier

import (
	"testing"

	"github.com/launix-de/cachesim/internal/segstore"
)

func TestHotColdThreshold(t *testing.T) {
	c := NewHotCold(10)
	if got := c.Classify(1, false, 15, 10); got != 0 {
		t.Fatalf("expected hot (0) for age 5 within window, got %d", got)
	}
	if got := c.Classify(1, false, 30, 10); got != 1 {
		t.Fatalf("expected cold (1) for age 20 beyond window, got %d", got)
	}
	if got := c.Classify(1, false, 30, CreatedTimestampUnset); got != 1 {
		t.Fatalf("expected cold for unset created timestamp, got %d", got)
	}
}

func TestMultiHotColdHostWriteClassZero(t *testing.T) {
	c := NewMultiHotCold(4, 10, false, false, true, 1000)
	if got := c.Classify(1, false, 100, 0); got != 0 {
		t.Fatalf("expected host writes to class 0 when classifyHostAppend is false, got %d", got)
	}
}

func TestMultiHotColdGCStreamBucketing(t *testing.T) {
	c := NewMultiHotCold(4, 10, false, false, true, 1000)
	got := c.Classify(1, true, 25, 0) // age 25 / granularity 10 -> bucket 2
	if got != GCStreamStart+2 {
		t.Fatalf("expected GCStreamStart+2, got %d", got)
	}
}

func TestMultiHotColdGCStreamCapped(t *testing.T) {
	c := NewMultiHotCold(4, 10, false, false, true, 1000)
	got := c.Classify(1, true, 1000, 0) // bucket way beyond maxGCStreams
	if got != GCStreamStart+3 {
		t.Fatalf("expected capped to last bucket (GCStreamStart+3), got %d", got)
	}
}

func TestMultiHotColdVictimStreamRequiresCreatedOnly(t *testing.T) {
	c := NewMultiHotCold(4, 10, false, false, true, 1000)
	if id := c.GetVictimStreamID(100, 10); id != -1 {
		t.Fatalf("expected -1 when checkCreatedOnly is false, got %d", id)
	}
}

func TestMultiHotColdVictimStreamFound(t *testing.T) {
	c := NewMultiHotCold(4, 10, true, false, true, 1000)
	c.Classify(1, true, 25, 5) // files created_ts=5 into a bucket and records it as oldest
	if id := c.GetVictimStreamID(100, 10); id == -1 {
		t.Fatal("expected a victim stream once a bucket's oldest entry has aged past threshold")
	}
}

func TestSepBITHostWriteUntrackedIsCold(t *testing.T) {
	c := NewSepBIT(1024)
	if got := c.Classify(42, false, 100, 0); got != 1 {
		t.Fatalf("expected cold (1) for a never-seen block, got %d", got)
	}
}

func TestSepBITGCAppendFirstCollectionIsClassTwo(t *testing.T) {
	c := NewSepBIT(1024)
	if got := c.Classify(1, true, 100, 0); got != 2+GCStreamStart {
		t.Fatalf("expected 2+GCStreamStart before any segment has been collected, got %d", got)
	}
}

func TestSepBITCollectSegmentUpdatesAverageAfter16(t *testing.T) {
	c := NewSepBIT(1024)
	for i := 0; i < 16; i++ {
		seg := &segstore.Segment{ClassNum: 0, CreateTs: 0}
		c.CollectSegment(seg, 100)
	}
	if c.avgLifespan != 100 {
		t.Fatalf("expected avgLifespan to settle to 100 after 16 class-0 collections, got %v", c.avgLifespan)
	}
}

func TestSepBITAppendMakesBlockHotIfRecentEnough(t *testing.T) {
	c := NewSepBIT(1024)
	c.CollectSegment(&segstore.Segment{ClassNum: 1, CreateTs: 0}, 0) // establish classNumOfLastCollected != 0 path irrelevant here
	c.Append(7, 0, 10)
	if got := c.Classify(7, false, 1, 0); got != 0 {
		t.Fatalf("expected a just-written block to classify hot, got %d", got)
	}
}
