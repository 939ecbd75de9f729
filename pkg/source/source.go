// Package source provides frame sources that feed observations into the
// monitor: recorded sessions replayed from JSON lines and a simulated
// driver for demos and soak runs.
package source

import (
	"context"

	"github.com/teslashibe/go-driverwatch/pkg/vision"
)

// Source produces one observation per call. Next returns io.EOF when the
// source is exhausted.
type Source interface {
	Next(ctx context.Context) (vision.Observation, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (vision.Observation, error)

// Next calls f.
func (f SourceFunc) Next(ctx context.Context) (vision.Observation, error) {
	return f(ctx)
}
