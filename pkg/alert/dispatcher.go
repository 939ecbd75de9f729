package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/teslashibe/go-driverwatch/internal/log"
	"github.com/teslashibe/go-driverwatch/pkg/distraction"
)

// Config enables the dispatcher and its individual channels.
type Config struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Visual  bool `json:"visual" yaml:"visual_alerts_enabled"`
	Audible bool `json:"audible" yaml:"audible_alerts_enabled"`
	System  bool `json:"system" yaml:"system_alerts_enabled"`
}

// DefaultConfig enables everything.
func DefaultConfig() Config {
	return Config{Enabled: true, Visual: true, Audible: true, System: true}
}

// Routes returns the channel kinds that handle a level. Safe has no
// route; it clears every channel instead.
func Routes(level distraction.Level) []Kind {
	switch level {
	case distraction.Warning:
		return []Kind{Visual}
	case distraction.Critical:
		return []Kind{Visual, Audible}
	case distraction.Severe:
		return []Kind{Visual, Audible, System}
	default:
		return nil
	}
}

// Dispatcher routes alerts to channels by level.
type Dispatcher struct {
	cfg      Config
	mu       sync.RWMutex
	channels map[Kind]Channel
	active   distraction.Level
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher with no channels attached.
func NewDispatcher(cfg Config) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		channels: make(map[Kind]Channel),
		logger:   log.Component("alert"),
	}
}

// NewLogDispatcher creates a dispatcher with a LogChannel for each kind.
func NewLogDispatcher(cfg Config) *Dispatcher {
	d := NewDispatcher(cfg)
	for _, k := range []Kind{Visual, Audible, System} {
		d.Attach(NewLogChannel(k))
	}
	return d
}

// Attach installs ch, replacing any channel of the same kind.
func (d *Dispatcher) Attach(ch Channel) {
	d.mu.Lock()
	d.channels[ch.Kind()] = ch
	d.mu.Unlock()
}

// Active returns the level of the last rendered alert.
func (d *Dispatcher) Active() distraction.Level {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

func (d *Dispatcher) enabled(k Kind) bool {
	switch k {
	case Visual:
		return d.cfg.Visual
	case Audible:
		return d.cfg.Audible
	case System:
		return d.cfg.System
	}
	return false
}

// Render sends ev to the channels for its level, or clears every channel
// when the driver is back to Safe.
func (d *Dispatcher) Render(ctx context.Context, ev distraction.AlertEvent) error {
	if !d.cfg.Enabled {
		return nil
	}

	d.mu.Lock()
	d.active = ev.Level
	channels := make(map[Kind]Channel, len(d.channels))
	for k, ch := range d.channels {
		channels[k] = ch
	}
	d.mu.Unlock()

	var errs []error
	if ev.Level == distraction.Safe {
		for k, ch := range channels {
			if err := ch.Clear(ctx); err != nil {
				errs = append(errs, fmt.Errorf("clear %s: %w", k, err))
			}
		}
		return errors.Join(errs...)
	}

	for _, k := range Routes(ev.Level) {
		ch, ok := channels[k]
		if !ok || !d.enabled(k) {
			continue
		}
		if err := ch.Notify(ctx, ev); err != nil {
			d.logger.Warn("channel failed", "channel", string(k), "level", ev.Level, "error", err)
			errs = append(errs, fmt.Errorf("notify %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}
