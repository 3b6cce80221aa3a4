package trace

import (
	"strings"
	"testing"
)

func drain(t *testing.T, r Reader) []Record {
	t.Helper()
	var out []Record
	for {
		rec, ok, err := r.Next()
		if !ok {
			if err != nil {
				t.Fatalf("unexpected scanner error: %v", err)
			}
			return out
		}
		if err != nil {
			// malformed row, skipped
			continue
		}
		out = append(out, rec)
	}
}

func TestCSVReaderParsesRecordsAndSkipsComments(t *testing.T) {
	input := "# header\n\n1,W,0,4096,10\n1,RS,4096,4096,11\n"
	r := NewCSVReader(strings.NewReader(input))
	recs := drain(t, r)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Op != OpWrite || recs[0].OffsetBytes != 0 || recs[0].SizeBytes != 4096 {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Op != OpRead || recs[1].Timestamp != 11 {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
}

func TestCSVReaderReportsParseErrorAndContinues(t *testing.T) {
	input := "1,W,0,4096,10\nnot,a,valid,row\n1,W,8192,4096,12\n"
	r := NewCSVReader(strings.NewReader(input))

	rec, ok, err := r.Next()
	if !ok || err != nil {
		t.Fatalf("expected first valid record, got ok=%v err=%v", ok, err)
	}
	if rec.OffsetBytes != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	_, ok, err = r.Next()
	if !ok || err == nil {
		t.Fatalf("expected a parse error on the malformed row, got ok=%v err=%v", ok, err)
	}

	rec, ok, err = r.Next()
	if !ok || err != nil {
		t.Fatalf("expected to recover and read the third record, got ok=%v err=%v", ok, err)
	}
	if rec.OffsetBytes != 8192 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestBlktraceReaderParsesSectorsToBytes(t *testing.T) {
	// columns: 1 2 3 4 5 op 6=sector 7 8=count 9
	input := "259,0 1 1 0.0 1234 W 100 1 8 +\n"
	r := NewBlktraceReader(strings.NewReader(input))
	recs := drain(t, r)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	if recs[0].Op != OpWrite {
		t.Fatalf("expected write op, got %v", recs[0].Op)
	}
	if recs[0].OffsetBytes != 100*512 || recs[0].SizeBytes != 8*512 {
		t.Fatalf("unexpected offset/size: %+v", recs[0])
	}
}

func TestFilteredReaderWriteOnlyDropsReads(t *testing.T) {
	input := "1,W,0,4096,1\n1,R,4096,4096,2\n1,W,8192,4096,3\n"
	base := NewCSVReader(strings.NewReader(input))
	f := NewFilteredReader(base, RWWriteOnly)
	recs := drain(t, f)
	if len(recs) != 2 {
		t.Fatalf("expected 2 write records, got %d", len(recs))
	}
	for _, r := range recs {
		if r.Op != OpWrite {
			t.Fatalf("unexpected read record leaked through: %+v", r)
		}
	}
}

func TestParseRWPolicyDefaultsToAll(t *testing.T) {
	if ParseRWPolicy("bogus") != RWAll {
		t.Fatal("expected unrecognized policy string to default to RWAll")
	}
	if ParseRWPolicy("read-only") != RWReadOnly {
		t.Fatal("expected read-only to parse correctly")
	}
}
