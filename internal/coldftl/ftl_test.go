package coldftl

import "testing"

func TestWriteTracksHostAndNANDPages(t *testing.T) {
	f := New(8, 4*4096, 4096, 2)
	n, err := f.Write(0, 4096, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 page written, got %d", n)
	}
	if f.HostPageWrites() != 1 || f.NANDPageWrites() != 1 {
		t.Fatalf("expected 1/1 host/nand writes, got %d/%d", f.HostPageWrites(), f.NANDPageWrites())
	}
}

func TestWriteMultiPageSpan(t *testing.T) {
	f := New(8, 4*4096, 4096, 2)
	n, err := f.Write(0, 3*4096, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 pages written, got %d", n)
	}
}

func TestRewriteInvalidatesOldMapping(t *testing.T) {
	f := New(8, 4*4096, 4096, 2)
	f.Write(0, 4096, 0)
	ppnBefore := f.lpnToPPN[0]
	f.Write(0, 4096, 0)
	ppnAfter := f.lpnToPPN[0]
	if ppnBefore == ppnAfter {
		t.Fatal("expected rewrite to move to a new physical page")
	}
	blockID, pageIdx := decodePPN(ppnBefore)
	if f.blocks[blockID].pages[pageIdx].valid {
		t.Fatal("expected old page to be invalidated after rewrite")
	}
}

func TestTrimInvalidatesWithoutWriting(t *testing.T) {
	f := New(8, 4*4096, 4096, 2)
	f.Write(0, 4096, 0)
	before := f.NANDPageWrites()
	f.Trim(0, 4096)
	if f.NANDPageWrites() != before {
		t.Fatal("trim should not add NAND writes")
	}
	if _, ok := f.lpnToPPN[0]; ok {
		t.Fatal("expected trim to erase the mapping")
	}
}

func TestGCReclaimsAndAmplifiesWrites(t *testing.T) {
	// 4 blocks of 2 pages each; force GC by keeping free threshold high.
	f := New(4, 2*4096, 4096, 2)
	// Fill blocks with writes across distinct LPNs, then overwrite half
	// of them so GC has live pages to copy forward.
	for i := uint64(0); i < 6; i++ {
		if _, err := f.Write(i*4096, 4096, 0); err != nil {
			t.Fatalf("unexpected error at write %d: %v", i, err)
		}
	}
	for i := uint64(0); i < 3; i++ {
		if _, err := f.Write(i*4096, 4096, 0); err != nil {
			t.Fatalf("unexpected error at overwrite %d: %v", i, err)
		}
	}
	if f.WriteAmplification() < 1.0 {
		t.Fatalf("expected write amplification >= 1.0, got %v", f.WriteAmplification())
	}
}

func TestWriteAmplificationDefaultIsOneBeforeAnyHostWrite(t *testing.T) {
	f := New(4, 2*4096, 4096, 2)
	if f.WriteAmplification() != 1.0 {
		t.Fatalf("expected 1.0 default, got %v", f.WriteAmplification())
	}
}
