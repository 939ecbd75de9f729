package distraction

import "time"

// AlertEvent is the outward notification consumed by an alert renderer.
type AlertEvent struct {
	Level          Level       `json:"level"`
	Previous       Level       `json:"previous"`
	Consequence    Consequence `json:"consequence"`
	Recommendation string      `json:"recommendation"`
	Timestamp      time.Time   `json:"timestamp"`
	TotalInWindow  int         `json:"total_in_window"`
	Consecutive    int         `json:"consecutive_failures"`
}

// Gate applies cooldown to level changes. An escalation always alerts, a
// non-safe level repeats at most once per cooldown, and a return to Safe
// alerts immediately.
type Gate struct {
	cooldown time.Duration

	lastLevel Level
	lastTime  time.Time
	alerted   bool
}

// NewGate creates a gate with the given cooldown.
func NewGate(cooldown time.Duration) *Gate {
	return &Gate{cooldown: cooldown}
}

// Evaluate decides whether state warrants an alert now. When it does, the
// gate records it and returns the event with ok set.
func (g *Gate) Evaluate(state State) (ev AlertEvent, ok bool) {
	now := state.Timestamp
	level := state.Level

	switch {
	case level == Safe:
		// Recovery is never delayed; a steady Safe is silent.
		if g.lastLevel == Safe {
			return AlertEvent{}, false
		}
	case level > g.lastLevel:
	case g.alerted && now.Sub(g.lastTime) >= g.cooldown:
	default:
		return AlertEvent{}, false
	}

	ev = AlertEvent{
		Level:          level,
		Previous:       g.lastLevel,
		Consequence:    level.Consequence(),
		Recommendation: level.Recommendation(),
		Timestamp:      now,
		TotalInWindow:  state.TotalInWindow,
		Consecutive:    state.ConsecutiveFailures,
	}

	g.lastLevel = level
	g.lastTime = now
	g.alerted = true
	return ev, true
}

// LastAlert returns the level and time of the last emitted alert. ok is
// false when nothing has been emitted since the last reset.
func (g *Gate) LastAlert() (level Level, at time.Time, ok bool) {
	return g.lastLevel, g.lastTime, g.alerted
}

// Reset clears the alert bookkeeping.
func (g *Gate) Reset() {
	g.lastLevel = Safe
	g.lastTime = time.Time{}
	g.alerted = false
}
