// Package vision turns head-pose and gaze estimates into the per-tick
// signals consumed by the distraction engine.
//
// Angle estimation itself happens upstream (face mesh on the camera
// device); this package only applies the orientation thresholds.
package vision

import (
	"math"
	"time"
)

// Pose is the estimated head orientation in degrees. Positive pitch looks
// down, positive yaw looks right, positive roll tilts clockwise.
type Pose struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// Gaze is the iris offset from the eye centre, normalised to -1..1.
// Positive X looks right, positive Y looks down.
type Gaze struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Observation is one analysed camera frame.
type Observation struct {
	Timestamp    time.Time `json:"timestamp"`
	FaceDetected bool      `json:"face_detected"`
	Pose         Pose      `json:"pose"`
	Gaze         Gaze      `json:"gaze"`
	Confidence   float64   `json:"confidence"`
}

// Direction is a coarse orientation label.
type Direction string

const (
	Forward Direction = "forward"
	Left    Direction = "left"
	Right   Direction = "right"
	Up      Direction = "up"
	Down    Direction = "down"
	Tilted  Direction = "tilted"
	Unknown Direction = "unknown"
)

// Degrees converts radians to degrees, for estimators that report radians.
func Degrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}

// Radians converts degrees to radians.
func Radians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

// PoseFromRadians builds a Pose from angles in radians.
func PoseFromRadians(pitch, yaw, roll float64) Pose {
	return Pose{Pitch: Degrees(pitch), Yaw: Degrees(yaw), Roll: Degrees(roll)}
}
