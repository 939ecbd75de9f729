package distraction

import (
	"fmt"
	"math"
	"time"
)

// Thresholds are the lower bounds (inclusive) of the failure counts in
// the window that select each non-safe level.
type Thresholds struct {
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
	Severe   int `json:"severe"`
}

// Config holds the engine parameters. It is static for a session.
type Config struct {
	// History
	Window   time.Duration `json:"window"`   // Trailing horizon for counting failures
	Capacity int           `json:"capacity"` // Hard cap on retained events

	// Level selection
	Thresholds     Thresholds `json:"thresholds"`
	BurstThreshold int        `json:"burst_threshold"` // Streak above this escalates one band (0 = off)

	// Input policy
	MinConfidence float64 `json:"min_confidence"` // Ticks below this count as unknown

	// Alerting
	Cooldown time.Duration `json:"cooldown"` // Minimum spacing of repeated alerts
}

// DefaultConfig returns the recommended configuration for a 1 Hz feed.
func DefaultConfig() Config {
	return Config{
		Window:   120 * time.Second,
		Capacity: 100,

		Thresholds: Thresholds{
			Warning:  5,
			Critical: 10,
			Severe:   20,
		},
		BurstThreshold: 0,

		MinConfidence: 0.5,

		Cooldown: 5 * time.Second,
	}
}

// StrictConfig reacts earlier: lower bands, a shorter cooldown and burst
// escalation after eight straight failing seconds.
func StrictConfig() Config {
	cfg := DefaultConfig()
	cfg.Thresholds = Thresholds{Warning: 3, Critical: 6, Severe: 12}
	cfg.BurstThreshold = 8
	cfg.Cooldown = 3 * time.Second
	return cfg
}

// LenientConfig suits noisy cameras: a longer window with higher bands and
// a stricter confidence floor.
func LenientConfig() Config {
	cfg := DefaultConfig()
	cfg.Window = 300 * time.Second
	cfg.Capacity = 200
	cfg.Thresholds = Thresholds{Warning: 10, Critical: 20, Severe: 40}
	cfg.MinConfidence = 0.6
	cfg.Cooldown = 10 * time.Second
	return cfg
}

// Preset returns a named configuration ("default", "strict", "lenient").
func Preset(name string) (Config, bool) {
	switch name {
	case "", "default":
		return DefaultConfig(), true
	case "strict":
		return StrictConfig(), true
	case "lenient":
		return LenientConfig(), true
	}
	return Config{}, false
}

// Validate checks the configuration and returns a *ConfigError listing
// every problem, or nil.
func (c Config) Validate() error {
	var problems []string

	if c.Window <= 0 {
		problems = append(problems, "window must be positive")
	}
	if c.Capacity <= 0 {
		problems = append(problems, "capacity must be positive")
	}

	t := c.Thresholds
	if t.Warning <= 0 {
		problems = append(problems, "warning threshold must be positive")
	}
	if t.Critical <= t.Warning {
		problems = append(problems, fmt.Sprintf("critical threshold (%d) must exceed warning threshold (%d)", t.Critical, t.Warning))
	}
	if t.Severe <= t.Critical {
		problems = append(problems, fmt.Sprintf("severe threshold (%d) must exceed critical threshold (%d)", t.Severe, t.Critical))
	}
	if c.BurstThreshold < 0 {
		problems = append(problems, "burst threshold must not be negative")
	}

	if math.IsNaN(c.MinConfidence) || c.MinConfidence < 0 || c.MinConfidence > 1 {
		problems = append(problems, "min confidence must be between 0 and 1")
	}
	if c.Cooldown < 0 {
		problems = append(problems, "cooldown must not be negative")
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

// LevelFor is the pure level function: the window count selects a band,
// checked from the most severe down, and a long enough streak raises it
// one band when burst escalation is configured.
func (c Config) LevelFor(totalInWindow, consecutive int) Level {
	var level Level
	switch {
	case totalInWindow >= c.Thresholds.Severe:
		level = Severe
	case totalInWindow >= c.Thresholds.Critical:
		level = Critical
	case totalInWindow >= c.Thresholds.Warning:
		level = Warning
	default:
		level = Safe
	}

	if c.BurstThreshold > 0 && consecutive > c.BurstThreshold && level < Severe {
		level++
	}
	return level
}
