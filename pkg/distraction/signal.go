package distraction

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FrameSignal is one per-tick observation from the vision pipeline.
type FrameSignal struct {
	Timestamp   time.Time `json:"timestamp"`
	FaceForward bool      `json:"face_forward"`
	EyesForward bool      `json:"eyes_forward"`
	Confidence  float64   `json:"confidence"`
}

// Passed reports whether both orientation checks hold.
func (s FrameSignal) Passed() bool {
	return s.FaceForward && s.EyesForward
}

// Validate checks the fields of a single signal. Ordering against earlier
// ticks is checked by the Analyzer.
func (s FrameSignal) Validate() error {
	if s.Timestamp.IsZero() {
		return &SignalError{Field: "timestamp", Reason: "is missing"}
	}
	if math.IsNaN(s.Confidence) || s.Confidence < 0 || s.Confidence > 1 {
		return &SignalError{Field: "confidence", Reason: "must be within [0, 1]"}
	}
	return nil
}

// FailureKind classifies a failing tick.
type FailureKind int

const (
	FaceFailure FailureKind = iota + 1
	EyeFailure
	BothFailure
)

// String returns the snake_case kind name.
func (k FailureKind) String() string {
	switch k {
	case FaceFailure:
		return "face_failure"
	case EyeFailure:
		return "eye_failure"
	case BothFailure:
		return "both_failure"
	default:
		return fmt.Sprintf("failure(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k FailureKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *FailureKind) UnmarshalText(text []byte) error {
	parsed, err := ParseFailureKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseFailureKind converts a kind name (case-insensitive) into a FailureKind.
func ParseFailureKind(s string) (FailureKind, error) {
	for _, k := range []FailureKind{FaceFailure, EyeFailure, BothFailure} {
		if strings.EqualFold(strings.TrimSpace(s), k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("distraction: unknown failure kind %q", s)
}

// Kind returns the failure kind of the signal. ok is false when the tick passed.
func (s FrameSignal) Kind() (kind FailureKind, ok bool) {
	switch {
	case !s.FaceForward && !s.EyesForward:
		return BothFailure, true
	case !s.FaceForward:
		return FaceFailure, true
	case !s.EyesForward:
		return EyeFailure, true
	default:
		return 0, false
	}
}

// FailureEvent is an immutable record of one failing tick.
type FailureEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Kind      FailureKind `json:"kind"`
}

// KindFilter selects which failure kinds a window query counts.
// A nil filter counts every kind.
type KindFilter func(FailureKind) bool

// OnlyKind returns a filter matching exactly kind.
func OnlyKind(kind FailureKind) KindFilter {
	return func(k FailureKind) bool { return k == kind }
}

// InvolvesFace matches failures where the face check failed.
func InvolvesFace(k FailureKind) bool { return k == FaceFailure || k == BothFailure }

// InvolvesEyes matches failures where the gaze check failed.
func InvolvesEyes(k FailureKind) bool { return k == EyeFailure || k == BothFailure }
