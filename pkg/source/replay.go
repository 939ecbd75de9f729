package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/teslashibe/go-driverwatch/pkg/vision"
)

// maxLineSize bounds a single JSON line.
const maxLineSize = 64 * 1024

// record is one replay line. Offset, when present, places the frame that
// many seconds after the replay base time and overrides Timestamp.
// PoseRad carries head pose in radians, as face-mesh solvers report it,
// and overrides Pose.
type record struct {
	Offset  *float64     `json:"t,omitempty"`
	PoseRad *vision.Pose `json:"pose_rad,omitempty"`
	vision.Observation
}

// Replay reads observations from JSON lines:
//
//	{"t": 0, "face_detected": true, "pose": {"yaw": 3}, "confidence": 0.92}
//	{"t": 1, "face_detected": true, "pose": {"yaw": 34}, "confidence": 0.88}
//
// Blank lines and lines starting with '#' are skipped.
type Replay struct {
	scanner  *bufio.Scanner
	base     time.Time
	realtime bool
	start    time.Time // wall time of the first paced frame
	first    time.Time // timestamp of the first paced frame
	line     int
}

// ReplayOption configures a Replay.
type ReplayOption func(*Replay)

// WithBase sets the time that offsets are measured from. Defaults to the
// time NewReplay was called.
func WithBase(t time.Time) ReplayOption {
	return func(r *Replay) { r.base = t }
}

// WithRealtime paces Next so frames come out at their recorded spacing.
func WithRealtime() ReplayOption {
	return func(r *Replay) { r.realtime = true }
}

// NewReplay creates a replay over r.
func NewReplay(r io.Reader, opts ...ReplayOption) *Replay {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	rp := &Replay{
		scanner: scanner,
		base:    time.Now(),
	}
	for _, opt := range opts {
		opt(rp)
	}
	return rp
}

// Next returns the next recorded observation.
func (r *Replay) Next(ctx context.Context) (vision.Observation, error) {
	for r.scanner.Scan() {
		r.line++
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return vision.Observation{}, fmt.Errorf("replay line %d: %w", r.line, err)
		}
		obs := rec.Observation
		if p := rec.PoseRad; p != nil {
			obs.Pose = vision.PoseFromRadians(p.Pitch, p.Yaw, p.Roll)
		}
		if rec.Offset != nil {
			obs.Timestamp = r.base.Add(time.Duration(*rec.Offset * float64(time.Second)))
		}

		if r.realtime {
			if err := r.pace(ctx, obs.Timestamp); err != nil {
				return vision.Observation{}, err
			}
		}
		return obs, nil
	}
	if err := r.scanner.Err(); err != nil {
		return vision.Observation{}, fmt.Errorf("replay line %d: %w", r.line+1, err)
	}
	return vision.Observation{}, io.EOF
}

// pace sleeps until ts is as far from the first frame as wall time is
// from the first call.
func (r *Replay) pace(ctx context.Context, ts time.Time) error {
	if r.start.IsZero() {
		r.start = time.Now()
		r.first = ts
		return nil
	}
	wait := ts.Sub(r.first) - time.Since(r.start)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
