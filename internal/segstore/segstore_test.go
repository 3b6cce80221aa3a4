package segstore

import (
	"testing"

	"github.com/launix-de/cachesim/internal/simerrors"
)

func TestSegmentAppendAndInvalidate(t *testing.T) {
	s := NewSegment(4)
	if s.Full() {
		t.Fatal("fresh segment reported full")
	}
	idx := s.Append(42, 1)
	if idx != 0 {
		t.Fatalf("expected slot 0, got %d", idx)
	}
	if s.ValidCnt != 1 {
		t.Fatalf("expected ValidCnt 1, got %d", s.ValidCnt)
	}
	s.SetSlotInvalid(idx)
	if s.ValidCnt != 0 {
		t.Fatalf("expected ValidCnt 0 after invalidate, got %d", s.ValidCnt)
	}
	// invalidating again is a no-op
	s.SetSlotInvalid(idx)
	if s.ValidCnt != 0 {
		t.Fatalf("double invalidate should not go negative, got %d", s.ValidCnt)
	}
}

func TestSegmentFullAndReset(t *testing.T) {
	s := NewSegment(2)
	s.Append(1, 0)
	s.Append(2, 0)
	if !s.Full() {
		t.Fatal("expected segment to be full")
	}
	gen := s.Generation()
	s.Reset()
	if s.Generation() != gen+1 {
		t.Fatalf("expected generation bump, got %d -> %d", gen, s.Generation())
	}
	if s.Full() || s.ValidCnt != 0 || s.WritePtr != 0 {
		t.Fatal("reset did not clear state")
	}
}

func TestSegmentAppendPanicsWhenFull(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic appending to a full segment")
		}
	}()
	s := NewSegment(1)
	s.Append(1, 0)
	s.Append(2, 0)
}

func TestStoreAllocateRelease(t *testing.T) {
	st := NewStore(2, 4)
	if st.Total() != 2 || st.FreeCount() != 2 {
		t.Fatalf("unexpected initial counts: total=%d free=%d", st.Total(), st.FreeCount())
	}
	a, err := st.Allocate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := st.Allocate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.FreeCount() != 0 {
		t.Fatalf("expected 0 free, got %d", st.FreeCount())
	}
	_, err = st.Allocate()
	if err == nil {
		t.Fatal("expected NoFreeSegmentError")
	}
	if _, ok := err.(*simerrors.NoFreeSegmentError); !ok {
		t.Fatalf("expected NoFreeSegmentError, got %T", err)
	}
	a.Append(7, 1)
	st.Release(a)
	if st.FreeCount() != 1 {
		t.Fatalf("expected 1 free after release, got %d", st.FreeCount())
	}
	if a.ValidCnt != 0 {
		t.Fatal("release should reset the segment")
	}
	st.Release(b)
	if st.FreeCount() != 2 {
		t.Fatalf("expected 2 free, got %d", st.FreeCount())
	}
}
