package vision

import (
	"fmt"
	"math"

	"github.com/teslashibe/go-driverwatch/pkg/distraction"
)

// Thresholds bound what still counts as looking at the road.
type Thresholds struct {
	Yaw   float64 `json:"yaw" yaml:"yaw_threshold"`     // degrees
	Pitch float64 `json:"pitch" yaml:"pitch_threshold"` // degrees
	Roll  float64 `json:"roll" yaml:"roll_threshold"`   // degrees
	Gaze  float64 `json:"gaze" yaml:"gaze_threshold"`   // normalised iris offset
}

// DefaultThresholds returns the thresholds tuned for a dash-mounted camera.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Yaw:   20,
		Pitch: 15,
		Roll:  20,
		Gaze:  0.3,
	}
}

// Validate checks every threshold is positive.
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{"yaw": t.Yaw, "pitch": t.Pitch, "roll": t.Roll, "gaze": t.Gaze} {
		if !(v > 0) {
			return fmt.Errorf("vision: %s threshold must be positive, got %v", name, v)
		}
	}
	return nil
}

// Classifier applies Thresholds to observations.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{thresholds: t}
}

// Thresholds returns the classifier thresholds.
func (c *Classifier) Thresholds() Thresholds { return c.thresholds }

// FaceDirection labels the head orientation. Yaw is checked first since
// looking sideways is the commonest distraction.
func (c *Classifier) FaceDirection(obs Observation) Direction {
	if !obs.FaceDetected {
		return Unknown
	}
	t := c.thresholds
	p := obs.Pose
	switch {
	case p.Yaw > t.Yaw:
		return Right
	case p.Yaw < -t.Yaw:
		return Left
	case p.Pitch > t.Pitch:
		return Down
	case p.Pitch < -t.Pitch:
		return Up
	case math.Abs(p.Roll) > t.Roll:
		return Tilted
	default:
		return Forward
	}
}

// GazeDirection labels the eye direction.
func (c *Classifier) GazeDirection(obs Observation) Direction {
	if !obs.FaceDetected {
		return Unknown
	}
	limit := c.thresholds.Gaze
	g := obs.Gaze
	switch {
	case g.X > limit:
		return Right
	case g.X < -limit:
		return Left
	case g.Y > limit:
		return Down
	case g.Y < -limit:
		return Up
	default:
		return Forward
	}
}

// Classify converts an observation into a frame signal. A frame with no
// face fails both checks at whatever confidence the detector reported.
func (c *Classifier) Classify(obs Observation) distraction.FrameSignal {
	return distraction.FrameSignal{
		Timestamp:   obs.Timestamp,
		FaceForward: c.FaceDirection(obs) == Forward,
		EyesForward: c.GazeDirection(obs) == Forward,
		Confidence:  obs.Confidence,
	}
}
