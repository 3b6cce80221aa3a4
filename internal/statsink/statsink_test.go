package statsink

import (
	"errors"
	"testing"

	"github.com/launix-de/cachesim/internal/simlog"
)

type fakeSink struct {
	name       string
	failPublish bool
	failClose  bool
	published  []RunStats
	closed     bool
}

func (f *fakeSink) Name() string { return f.name }
func (f *fakeSink) Publish(s RunStats) error {
	if f.failPublish {
		return errors.New("boom")
	}
	f.published = append(f.published, s)
	return nil
}
func (f *fakeSink) Close() error {
	f.closed = true
	if f.failClose {
		return errors.New("close boom")
	}
	return nil
}

func TestFanoutPublishesToAllSubscribers(t *testing.T) {
	a := &fakeSink{name: "a"}
	b := &fakeSink{name: "b"}
	f := NewFanout(simlog.Nop{}, a, b)

	stats := RunStats{RunID: "r1", WriteSizeToCache: 42}
	f.Publish(stats)

	if len(a.published) != 1 || a.published[0] != stats {
		t.Fatalf("subscriber a did not receive stats: %+v", a.published)
	}
	if len(b.published) != 1 || b.published[0] != stats {
		t.Fatalf("subscriber b did not receive stats: %+v", b.published)
	}
}

func TestFanoutIsolatesPublishFailures(t *testing.T) {
	failing := &fakeSink{name: "failing", failPublish: true}
	ok := &fakeSink{name: "ok"}
	f := NewFanout(simlog.Nop{}, failing, ok)

	stats := RunStats{RunID: "r1"}
	f.Publish(stats)

	if len(ok.published) != 1 {
		t.Fatal("expected the healthy subscriber to still receive stats despite the other failing")
	}
}

func TestFanoutCloseVisitsEverySubscriber(t *testing.T) {
	a := &fakeSink{name: "a", failClose: true}
	b := &fakeSink{name: "b"}
	f := NewFanout(simlog.Nop{}, a, b)
	f.Close()

	if !a.closed || !b.closed {
		t.Fatal("expected Close to be called on every subscriber even if one errors")
	}
}
