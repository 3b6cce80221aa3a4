package replserver

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/launix-de/cachesim/internal/statsink"
)

type fakeEngine struct {
	stepped   int
	stepErr   error
	stats     statsink.RunStats
	segments  map[int]string
}

func (f *fakeEngine) Step(n int) (int, error) {
	if f.stepErr != nil {
		return 0, f.stepErr
	}
	f.stepped += n
	return n, nil
}

func (f *fakeEngine) Stats() statsink.RunStats { return f.stats }

func (f *fakeEngine) DumpSegment(id int) (string, error) {
	dump, ok := f.segments[id]
	if !ok {
		return "", errors.New("no such segment")
	}
	return dump, nil
}

func TestRunCommandStepDefaultsToOne(t *testing.T) {
	eng := &fakeEngine{}
	var out bytes.Buffer
	runCommand(eng, "step", &out)

	if eng.stepped != 1 {
		t.Fatalf("expected Step(1), stepped=%d", eng.stepped)
	}
	if !strings.Contains(out.String(), "stepped 1/1") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunCommandStepWithCount(t *testing.T) {
	eng := &fakeEngine{}
	var out bytes.Buffer
	runCommand(eng, "step 5", &out)

	if eng.stepped != 5 {
		t.Fatalf("expected Step(5), stepped=%d", eng.stepped)
	}
}

func TestRunCommandStepRejectsBadCount(t *testing.T) {
	eng := &fakeEngine{}
	var out bytes.Buffer
	runCommand(eng, "step abc", &out)

	if eng.stepped != 0 {
		t.Fatal("expected no step to occur for an invalid count")
	}
	if !strings.Contains(out.String(), "invalid count") {
		t.Fatalf("expected invalid count message, got %q", out.String())
	}
}

func TestRunCommandStat(t *testing.T) {
	eng := &fakeEngine{stats: statsink.RunStats{RunID: "abc123", EvictedBlocks: 7}}
	var out bytes.Buffer
	runCommand(eng, "stat", &out)

	got := out.String()
	if !strings.Contains(got, "run_id=abc123") || !strings.Contains(got, "evicted_blocks=7") {
		t.Fatalf("unexpected stat output: %q", got)
	}
}

func TestRunCommandSegmentFound(t *testing.T) {
	eng := &fakeEngine{segments: map[int]string{3: "segment 3 dump"}}
	var out bytes.Buffer
	runCommand(eng, "segment 3", &out)

	if !strings.Contains(out.String(), "segment 3 dump") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunCommandSegmentMissing(t *testing.T) {
	eng := &fakeEngine{segments: map[int]string{}}
	var out bytes.Buffer
	runCommand(eng, "segment 9", &out)

	if !strings.Contains(out.String(), "no such segment") {
		t.Fatalf("expected error message, got %q", out.String())
	}
}

func TestRunCommandSegmentRequiresID(t *testing.T) {
	eng := &fakeEngine{}
	var out bytes.Buffer
	runCommand(eng, "segment", &out)

	if !strings.Contains(out.String(), "usage:") {
		t.Fatalf("expected usage message, got %q", out.String())
	}
}

func TestRunCommandUnknown(t *testing.T) {
	eng := &fakeEngine{}
	var out bytes.Buffer
	runCommand(eng, "frobnicate", &out)

	if !strings.Contains(out.String(), "unknown command") {
		t.Fatalf("expected unknown command message, got %q", out.String())
	}
}
