package simlog

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestNewDefaultsToInfoLevel(t *testing.T) {
	l := New("bogus", os.Stderr)
	if l == nil {
		t.Fatal("expected a non-nil logger")
	}
}

func TestNopLoggerDiscardsEverything(t *testing.T) {
	var n Nop
	n.Infof("hello %d", 1)
	if w := n.With("k", "v"); w == nil {
		t.Fatal("expected With to return a usable logger")
	}
}

func TestSlogLoggerEmitsJSON(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	logger := New("info", w)
	logger.Infof("run %s started", "abc")
	w.Close()

	var buf bytes.Buffer
	buf.ReadFrom(r)
	line := strings.TrimSpace(buf.String())
	var parsed map[string]any
	if err := json.Unmarshal([]byte(line), &parsed); err != nil {
		t.Fatalf("expected valid JSON line, got %q: %v", line, err)
	}
	if parsed["msg"] != "run abc started" {
		t.Fatalf("unexpected msg field: %v", parsed["msg"])
	}
}
