// Package alert renders distraction alerts to the driver.
//
// The engine decides what to raise and when; a Renderer decides how.
// Dispatcher routes each alert to visual, audible and system channels by
// level, the way the in-vehicle unit escalates from a dashboard icon to a
// chime to an intervention request.
package alert

import (
	"context"
	"errors"

	"github.com/teslashibe/go-driverwatch/pkg/distraction"
)

// Renderer consumes alert events.
type Renderer interface {
	Render(ctx context.Context, ev distraction.AlertEvent) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, ev distraction.AlertEvent) error

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, ev distraction.AlertEvent) error {
	return f(ctx, ev)
}

// Multi fans an alert out to every renderer and joins their errors.
type Multi []Renderer

// Render calls each renderer in order.
func (m Multi) Render(ctx context.Context, ev distraction.AlertEvent) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.Render(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
