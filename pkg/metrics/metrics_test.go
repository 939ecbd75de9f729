package metrics

import (
	"bytes"
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-driverwatch/pkg/distraction"
)

var base = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func frame(sec int, pass bool) FrameRecord {
	return FrameRecord{
		Timestamp:   base.Add(time.Duration(sec) * time.Second),
		FaceForward: pass,
		EyesForward: pass,
		Confidence:  0.9,
		Latency:     2 * time.Millisecond,
	}
}

func TestRecorder_CountsOutcomes(t *testing.T) {
	r := NewRecorder(10)

	r.RecordFrame(frame(0, true))
	r.RecordFrame(frame(1, false))
	unsure := frame(2, false)
	unsure.Uncertain = true
	r.RecordFrame(unsure)
	alerted := frame(3, false)
	alerted.Alerted = true
	alerted.Level = distraction.Warning
	r.RecordFrame(alerted)
	r.IncRejected()
	r.IncDropped()
	r.IncDropped()

	want := Counters{Frames: 4, Failures: 2, Uncertain: 1, Rejected: 1, Dropped: 2, Alerts: 1}
	if got := r.Counters(); got != want {
		t.Errorf("Counters: got %+v, want %+v", got, want)
	}
}

func TestRecorder_RingKeepsNewest(t *testing.T) {
	r := NewRecorder(5)
	for i := 0; i < 13; i++ {
		r.RecordFrame(frame(i, true))
	}

	recent := r.Recent()
	if len(recent) != 5 {
		t.Fatalf("Recent: got %d, want 5", len(recent))
	}
	for i, rec := range recent {
		want := base.Add(time.Duration(8+i) * time.Second)
		if !rec.Timestamp.Equal(want) {
			t.Errorf("record %d: got %v, want %v", i, rec.Timestamp, want)
		}
	}
}

func TestRecorder_SnapshotFPSAndLatency(t *testing.T) {
	r := NewRecorder(50)
	for i := 0; i < 20; i++ {
		r.RecordFrame(frame(i, true))
	}

	snap := r.Snapshot()
	if math.Abs(snap.FPS-1) > 1e-9 {
		t.Errorf("FPS: got %v, want 1", snap.FPS)
	}
	if snap.AvgLatency != 2*time.Millisecond {
		t.Errorf("AvgLatency: got %v, want 2ms", snap.AvgLatency)
	}
	if !snap.LastFrameAt.Equal(base.Add(19 * time.Second)) {
		t.Errorf("LastFrameAt: got %v", snap.LastFrameAt)
	}
}

func TestRecorder_ExportIsJSON(t *testing.T) {
	r := NewRecorder(5)
	r.RecordFrame(frame(0, false))

	var buf bytes.Buffer
	if err := r.Export(&buf); err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		Counters     Counters         `json:"counters"`
		RecentFrames []map[string]any `json:"recent_frames"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("export is not JSON: %v\n%s", err, buf.String())
	}
	if decoded.Counters.Frames != 1 || len(decoded.RecentFrames) != 1 {
		t.Errorf("decoded: %+v", decoded)
	}
	if decoded.RecentFrames[0]["level"] != "safe" {
		t.Errorf("level should encode by name, got %v", decoded.RecentFrames[0]["level"])
	}
}

func TestRecorder_ResetKeepsCounters(t *testing.T) {
	r := NewRecorder(5)
	r.RecordFrame(frame(0, false))
	r.Reset()

	if len(r.Recent()) != 0 {
		t.Error("Reset left frame records")
	}
	if r.Counters().Frames != 1 {
		t.Error("Reset cleared process counters")
	}
	if r.Snapshot().FPS != 0 {
		t.Error("Reset left performance window")
	}
}

func TestRecorder_ConcurrentUse(t *testing.T) {
	r := NewRecorder(20)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				r.RecordFrame(frame(g*1000+i, i%2 == 0))
				r.Snapshot()
			}
		}(g)
	}
	wg.Wait()

	if got := r.Counters().Frames; got != 1000 {
		t.Errorf("Frames: got %d, want 1000", got)
	}
	if len(r.Recent()) != 20 {
		t.Errorf("Recent: got %d, want 20", len(r.Recent()))
	}
}

func TestPerformanceMonitor_WindowSlides(t *testing.T) {
	p := NewPerformanceMonitor(4)
	// Four frames at 1s spacing, then four at 0.5s.
	ts := base
	for i := 0; i < 4; i++ {
		ts = ts.Add(time.Second)
		p.Observe(ts, time.Millisecond)
	}
	for i := 0; i < 4; i++ {
		ts = ts.Add(500 * time.Millisecond)
		p.Observe(ts, 3*time.Millisecond)
	}

	if math.Abs(p.FPS()-2) > 1e-9 {
		t.Errorf("FPS: got %v, want 2", p.FPS())
	}
	if p.AvgLatency() != 3*time.Millisecond {
		t.Errorf("AvgLatency: got %v, want 3ms", p.AvgLatency())
	}
}
