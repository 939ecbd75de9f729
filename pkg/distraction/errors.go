package distraction

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Match with errors.Is.
var (
	// ErrInvalidSignal is returned for a malformed tick. State is left unchanged.
	ErrInvalidSignal = errors.New("distraction: invalid signal")

	// ErrInvalidConfig is returned when a Config cannot build an engine.
	ErrInvalidConfig = errors.New("distraction: invalid configuration")
)

// SignalError describes why a FrameSignal was rejected.
type SignalError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *SignalError) Error() string {
	return fmt.Sprintf("distraction: invalid signal: %s %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidSignal.
func (e *SignalError) Unwrap() error {
	return ErrInvalidSignal
}

// ConfigError lists every problem found in a Config.
type ConfigError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "distraction: invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
