// Package metrics records per-frame outcomes and throughput for the
// dashboard and for offline review of a drive.
package metrics

import (
	"encoding/json"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-driverwatch/pkg/distraction"
)

// DefaultRecentFrames is how many frame records are kept.
const DefaultRecentFrames = 500

// FrameRecord is the outcome of one processed frame.
type FrameRecord struct {
	Timestamp   time.Time         `json:"timestamp"`
	FaceForward bool              `json:"face_forward"`
	EyesForward bool              `json:"eyes_forward"`
	Confidence  float64           `json:"confidence"`
	Level       distraction.Level `json:"level"`
	Uncertain   bool              `json:"uncertain,omitempty"`
	Alerted     bool              `json:"alerted,omitempty"`
	Latency     time.Duration     `json:"latency_ns"`
}

// Counters is a point-in-time copy of the recorder counters.
type Counters struct {
	Frames    int64 `json:"frames"`
	Failures  int64 `json:"failures"`
	Uncertain int64 `json:"uncertain"`
	Rejected  int64 `json:"rejected"`
	Dropped   int64 `json:"dropped"`
	Alerts    int64 `json:"alerts"`
}

// Snapshot is everything the recorder knows.
type Snapshot struct {
	Counters     Counters      `json:"counters"`
	FPS          float64       `json:"fps"`
	AvgLatency   time.Duration `json:"avg_latency_ns"`
	LastFrameAt  time.Time     `json:"last_frame_at,omitzero"`
	RecentFrames []FrameRecord `json:"recent_frames"`
}

// Recorder is safe for concurrent use. Counters are lock-free; the frame
// ring and performance window share a mutex.
type Recorder struct {
	frames    atomic.Int64
	failures  atomic.Int64
	uncertain atomic.Int64
	rejected  atomic.Int64
	dropped   atomic.Int64
	alerts    atomic.Int64

	mu     sync.Mutex
	recent []FrameRecord
	start  int
	perf   *PerformanceMonitor
}

// NewRecorder keeps the last size frame records.
func NewRecorder(size int) *Recorder {
	if size < 1 {
		size = DefaultRecentFrames
	}
	return &Recorder{
		recent: make([]FrameRecord, 0, size),
		perf:   NewPerformanceMonitor(DefaultPerfWindow),
	}
}

// RecordFrame stores the outcome of a processed frame.
func (r *Recorder) RecordFrame(rec FrameRecord) {
	r.frames.Add(1)
	if !rec.Uncertain && !(rec.FaceForward && rec.EyesForward) {
		r.failures.Add(1)
	}
	if rec.Uncertain {
		r.uncertain.Add(1)
	}
	if rec.Alerted {
		r.alerts.Add(1)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.recent) < cap(r.recent) {
		r.recent = append(r.recent, rec)
	} else {
		r.recent[r.start] = rec
		r.start = (r.start + 1) % len(r.recent)
	}
	r.perf.Observe(rec.Timestamp, rec.Latency)
}

// IncRejected counts a frame refused as invalid.
func (r *Recorder) IncRejected() { r.rejected.Add(1) }

// IncDropped counts a frame dropped because the analyzer was busy.
func (r *Recorder) IncDropped() { r.dropped.Add(1) }

// IncAlerts counts an alert that was not tied to a frame.
func (r *Recorder) IncAlerts() { r.alerts.Add(1) }

// Counters returns the current counters.
func (r *Recorder) Counters() Counters {
	return Counters{
		Frames:    r.frames.Load(),
		Failures:  r.failures.Load(),
		Uncertain: r.uncertain.Load(),
		Rejected:  r.rejected.Load(),
		Dropped:   r.dropped.Load(),
		Alerts:    r.alerts.Load(),
	}
}

// Recent returns the stored frame records, oldest first.
func (r *Recorder) Recent() []FrameRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]FrameRecord, 0, len(r.recent))
	out = append(out, r.recent[r.start:]...)
	out = append(out, r.recent[:r.start]...)
	return out
}

// Snapshot copies the recorder state.
func (r *Recorder) Snapshot() Snapshot {
	recent := r.Recent()

	r.mu.Lock()
	fps := r.perf.FPS()
	avg := r.perf.AvgLatency()
	r.mu.Unlock()

	snap := Snapshot{
		Counters:     r.Counters(),
		FPS:          fps,
		AvgLatency:   avg,
		RecentFrames: recent,
	}
	if n := len(recent); n > 0 {
		snap.LastFrameAt = recent[n-1].Timestamp
	}
	return snap
}

// Export writes the snapshot as indented JSON.
func (r *Recorder) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Snapshot())
}

// Reset clears the frame ring and performance window. Counters are kept:
// they describe the process, not the session.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recent = r.recent[:0]
	r.start = 0
	r.perf.Reset()
}
