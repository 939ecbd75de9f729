package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-driverwatch/pkg/distraction"
)

type recordingChannel struct {
	kind    Kind
	mu      sync.Mutex
	levels  []distraction.Level
	clears  int
	failErr error
}

func (r *recordingChannel) Kind() Kind { return r.kind }

func (r *recordingChannel) Notify(_ context.Context, ev distraction.AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, ev.Level)
	return r.failErr
}

func (r *recordingChannel) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
	return nil
}

func newRecorded(cfg Config) (*Dispatcher, map[Kind]*recordingChannel) {
	d := NewDispatcher(cfg)
	chans := map[Kind]*recordingChannel{}
	for _, k := range []Kind{Visual, Audible, System} {
		ch := &recordingChannel{kind: k}
		chans[k] = ch
		d.Attach(ch)
	}
	return d, chans
}

func event(level distraction.Level) distraction.AlertEvent {
	return distraction.AlertEvent{
		Level:       level,
		Consequence: level.Consequence(),
		Timestamp:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestDispatcher_RoutesByLevel(t *testing.T) {
	tests := []struct {
		level distraction.Level
		want  map[Kind]int
	}{
		{distraction.Warning, map[Kind]int{Visual: 1}},
		{distraction.Critical, map[Kind]int{Visual: 1, Audible: 1}},
		{distraction.Severe, map[Kind]int{Visual: 1, Audible: 1, System: 1}},
	}

	for _, tc := range tests {
		d, chans := newRecorded(DefaultConfig())
		if err := d.Render(context.Background(), event(tc.level)); err != nil {
			t.Fatalf("%v: %v", tc.level, err)
		}
		for k, ch := range chans {
			if len(ch.levels) != tc.want[k] {
				t.Errorf("%v: channel %s got %d alerts, want %d", tc.level, k, len(ch.levels), tc.want[k])
			}
		}
		if d.Active() != tc.level {
			t.Errorf("Active: got %v, want %v", d.Active(), tc.level)
		}
	}
}

func TestDispatcher_SafeClearsEveryChannel(t *testing.T) {
	d, chans := newRecorded(DefaultConfig())
	d.Render(context.Background(), event(distraction.Severe))
	d.Render(context.Background(), event(distraction.Safe))

	for k, ch := range chans {
		if ch.clears != 1 {
			t.Errorf("channel %s: %d clears, want 1", k, ch.clears)
		}
	}
}

func TestDispatcher_RespectsEnabledFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audible = false
	d, chans := newRecorded(cfg)

	d.Render(context.Background(), event(distraction.Severe))
	if len(chans[Audible].levels) != 0 {
		t.Error("disabled audible channel was notified")
	}
	if len(chans[System].levels) != 1 {
		t.Error("system channel should still be notified")
	}

	cfg.Enabled = false
	d, chans = newRecorded(cfg)
	d.Render(context.Background(), event(distraction.Severe))
	if len(chans[Visual].levels) != 0 {
		t.Error("disabled dispatcher rendered alerts")
	}
}

func TestDispatcher_JoinsChannelErrors(t *testing.T) {
	d, chans := newRecorded(DefaultConfig())
	boom := errors.New("speaker unplugged")
	chans[Audible].failErr = boom

	err := d.Render(context.Background(), event(distraction.Severe))
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped %v", err, boom)
	}
	// The other channels still fire.
	if len(chans[System].levels) != 1 {
		t.Error("system channel skipped after audible failure")
	}
}

func TestMulti_CallsAllAndJoinsErrors(t *testing.T) {
	var calls int
	first := errors.New("first")
	m := Multi{
		RendererFunc(func(context.Context, distraction.AlertEvent) error { calls++; return first }),
		nil,
		RendererFunc(func(context.Context, distraction.AlertEvent) error { calls++; return nil }),
	}

	err := m.Render(context.Background(), event(distraction.Warning))
	if calls != 2 {
		t.Errorf("calls: got %d, want 2", calls)
	}
	if !errors.Is(err, first) {
		t.Errorf("got %v, want %v", err, first)
	}
}

func TestLogDispatcher_RendersWithoutError(t *testing.T) {
	d := NewLogDispatcher(DefaultConfig())
	for _, level := range []distraction.Level{distraction.Warning, distraction.Critical, distraction.Severe, distraction.Safe} {
		if err := d.Render(context.Background(), event(level)); err != nil {
			t.Errorf("%v: %v", level, err)
		}
	}
}
