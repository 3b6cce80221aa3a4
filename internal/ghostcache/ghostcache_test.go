package ghostcache

import "testing"

func TestGhostCachePushAccess(t *testing.T) {
	g := New(2)
	g.Push(1)
	if !g.Contains(1) {
		t.Fatal("expected 1 to be present")
	}
	if !g.Access(1) {
		t.Fatal("expected Access hit for 1")
	}
	if g.Contains(1) {
		t.Fatal("Access should consume membership")
	}
	if g.Access(1) {
		t.Fatal("second Access should miss")
	}
}

func TestGhostCacheCapacityEviction(t *testing.T) {
	g := New(2)
	g.Push(1)
	g.Push(2)
	g.Push(3) // evicts 1
	if g.Contains(1) {
		t.Fatal("expected 1 to be evicted")
	}
	if !g.Contains(2) || !g.Contains(3) {
		t.Fatal("expected 2 and 3 to remain")
	}
	if g.Len() != 2 {
		t.Fatalf("expected Len 2, got %d", g.Len())
	}
	if g.EvictedCount() != 1 {
		t.Fatalf("expected EvictedCount 1, got %d", g.EvictedCount())
	}
}

func TestGhostCacheZeroCapacityDisabled(t *testing.T) {
	g := New(0)
	g.Push(1)
	if g.Contains(1) || g.Access(1) {
		t.Fatal("zero-capacity ghost cache must never retain anything")
	}
}

func TestGhostCachePushDuplicateNoop(t *testing.T) {
	g := New(3)
	g.Push(1)
	g.Push(2)
	g.Push(1) // duplicate, should not move or grow
	if g.Len() != 2 {
		t.Fatalf("expected Len 2, got %d", g.Len())
	}
	g.Push(3)
	g.Push(4) // now must evict the oldest, which is still 1
	if g.Contains(1) {
		t.Fatal("expected original-order eviction of 1")
	}
}
