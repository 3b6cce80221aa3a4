package coldftl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	f := New(4, 2*4096, 4096, 2)
	for i := uint64(0); i < 5; i++ {
		if _, err := f.Write(i*4096, 4096, 0); err != nil {
			t.Fatalf("unexpected error at write %d: %v", i, err)
		}
	}
	before := f.WriteAmplification()
	beforeHost, beforeNAND := f.HostPageWrites(), f.NANDPageWrites()

	data, err := f.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	g := New(4, 2*4096, 4096, 2)
	if err := g.Restore(data); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if g.HostPageWrites() != beforeHost || g.NANDPageWrites() != beforeNAND {
		t.Fatalf("restore did not preserve counters: got %d/%d want %d/%d",
			g.HostPageWrites(), g.NANDPageWrites(), beforeHost, beforeNAND)
	}
	if g.WriteAmplification() != before {
		t.Fatalf("restore changed write amplification: got %v want %v", g.WriteAmplification(), before)
	}

	if diff := cmp.Diff(f.lpnToPPN, g.lpnToPPN); diff != "" {
		t.Fatalf("lpnToPPN mismatch after restore (-want +got):\n%s", diff)
	}
}

func TestRestoreRejectsGeometryMismatch(t *testing.T) {
	f := New(4, 2*4096, 4096, 2)
	data, err := f.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	g := New(8, 2*4096, 4096, 2)
	if err := g.Restore(data); err == nil {
		t.Fatal("expected a geometry mismatch error")
	}
}
