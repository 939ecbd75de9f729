package alert

import (
	"context"
	"log/slog"

	"github.com/teslashibe/go-driverwatch/internal/log"
	"github.com/teslashibe/go-driverwatch/pkg/distraction"
)

// Kind names an output channel.
type Kind string

const (
	Visual  Kind = "visual"
	Audible Kind = "audible"
	System  Kind = "system"
)

// Channel is one output path, such as a dashboard icon or a chime.
type Channel interface {
	Kind() Kind
	Notify(ctx context.Context, ev distraction.AlertEvent) error
	Clear(ctx context.Context) error
}

// LogChannel is a Channel that only writes structured log lines. It is the
// fallback when no hardware is attached.
type LogChannel struct {
	kind   Kind
	logger *slog.Logger
}

// NewLogChannel creates a logging channel of the given kind.
func NewLogChannel(kind Kind) *LogChannel {
	return &LogChannel{
		kind:   kind,
		logger: log.Component("alert").With("channel", string(kind)),
	}
}

// Kind returns the channel kind.
func (c *LogChannel) Kind() Kind { return c.kind }

// Notify logs the alert at a level matching its severity.
func (c *LogChannel) Notify(ctx context.Context, ev distraction.AlertEvent) error {
	lvl := slog.LevelWarn
	if ev.Level >= distraction.Critical {
		lvl = slog.LevelError
	}
	c.logger.Log(ctx, lvl, "alert",
		"level", ev.Level,
		"consequence", ev.Consequence,
		"message", ev.Recommendation,
		"in_window", ev.TotalInWindow)
	return nil
}

// Clear logs that the channel was cleared.
func (c *LogChannel) Clear(ctx context.Context) error {
	c.logger.InfoContext(ctx, "cleared")
	return nil
}
