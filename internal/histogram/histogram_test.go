package histogram

import (
	"bytes"
	"strings"
	"testing"
)

func TestHistogramBucketing(t *testing.T) {
	var buf bytes.Buffer
	h := New("age", 10, 4, &buf)
	h.Inc(5, 1)   // bucket 0
	h.Inc(15, 1)  // bucket 1
	h.Inc(25, 1)  // bucket 2
	h.Inc(1000, 1) // overflow -> last bucket (3)
	h.Inc(1000, 1)

	if h.Bucket(0) != 1 || h.Bucket(1) != 1 || h.Bucket(2) != 1 || h.Bucket(3) != 2 {
		t.Fatalf("unexpected bucket contents: %d %d %d %d", h.Bucket(0), h.Bucket(1), h.Bucket(2), h.Bucket(3))
	}
}

func TestHistogramGranularityZeroClamp(t *testing.T) {
	h := New("x", 0, 0, nil)
	h.Inc(0, 1)
	if h.Bucket(0) != 1 {
		t.Fatalf("expected granularity/bucket clamp to 1, got %d", h.Bucket(0))
	}
}

func TestHistogramDumpFormat(t *testing.T) {
	var buf bytes.Buffer
	h := New("waf", 1, 2, &buf)
	h.Inc(0, 3)
	h.Dump()
	out := buf.String()
	if !strings.Contains(out, "---summary of waf---") {
		t.Fatalf("missing header in output: %q", out)
	}
	if !strings.Contains(out, "0 3") {
		t.Fatalf("missing bucket line in output: %q", out)
	}
}

func TestHistogramCloseIdempotent(t *testing.T) {
	var buf bytes.Buffer
	h := New("waf", 1, 2, &buf)
	h.Inc(0, 1)
	if err := h.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := strings.Count(buf.String(), "---summary of waf---")
	if err := h.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
	if strings.Count(buf.String(), "---summary of waf---") != n {
		t.Fatal("Close should be idempotent and not dump twice")
	}
}
