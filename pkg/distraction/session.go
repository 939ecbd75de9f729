package distraction

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-driverwatch/internal/log"
)

// Result is the outcome of one tick. Alert is nil when the gate
// suppressed it.
type Result struct {
	State State       `json:"state"`
	Alert *AlertEvent `json:"alert,omitempty"`
}

// Snapshot is a point-in-time view of a session for dashboards.
type Snapshot struct {
	SessionID      string    `json:"session_id"`
	StartedAt      time.Time `json:"started_at"`
	State          State     `json:"state"`
	Stats          Stats     `json:"stats"`
	Retained       int       `json:"retained_events"`
	LastAlertLevel Level     `json:"last_alert_level"`
	LastAlertAt    time.Time `json:"last_alert_at,omitzero"`
}

// Session is one monitoring session: an Analyzer and a Gate sharing a
// lock, so Reset may be called from any goroutine between ticks.
type Session struct {
	mu       sync.Mutex
	id       string
	started  time.Time
	analyzer *Analyzer
	gate     *Gate
	last     State
	logger   *slog.Logger
}

// NewSession validates cfg and starts a session with a fresh ID.
func NewSession(cfg Config) (*Session, error) {
	analyzer, err := NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}
	s := &Session{
		analyzer: analyzer,
		gate:     NewGate(cfg.Cooldown),
		logger:   log.Component("distraction"),
	}
	s.begin()
	s.logger.Info("session started",
		"session", s.id,
		"window", cfg.Window,
		"capacity", cfg.Capacity,
		"thresholds", []int{cfg.Thresholds.Warning, cfg.Thresholds.Critical, cfg.Thresholds.Severe},
		"burst", cfg.BurstThreshold,
		"cooldown", cfg.Cooldown)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.analyzer.Config()
}

// Tick processes one signal and runs the alert gate.
func (s *Session) Tick(sig FrameSignal) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.analyzer.Process(sig)
	if err != nil {
		s.logger.Debug("signal rejected", "session", s.id, "error", err)
		return Result{}, err
	}
	return s.finish(state), nil
}

// Refresh re-derives the level at now with no new observation so that
// failures age out while the feed is silent. A time before the last tick
// returns the last state unchanged.
func (s *Session) Refresh(now time.Time) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.last.Timestamp.IsZero() && now.Before(s.last.Timestamp) {
		return Result{State: s.last}
	}
	return s.finish(s.analyzer.Evaluate(now))
}

// Reset clears all session state and assigns a new session ID.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.id
	s.analyzer.Reset()
	s.gate.Reset()
	s.begin()
	s.logger.Info("session reset", "previous", previous, "session", s.id)
}

// Snapshot returns the current session view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	level, at, _ := s.gate.LastAlert()
	return Snapshot{
		SessionID:      s.id,
		StartedAt:      s.started,
		State:          s.last,
		Stats:          s.analyzer.Stats(),
		Retained:       s.analyzer.History().Len(),
		LastAlertLevel: level,
		LastAlertAt:    at,
	}
}

// Events returns a copy of the retained failure events, oldest first.
func (s *Session) Events() []FailureEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer.History().Events()
}

func (s *Session) finish(state State) Result {
	if state.Level != s.last.Level {
		s.logger.Info("level changed",
			"session", s.id,
			"from", s.last.Level,
			"to", state.Level,
			"in_window", state.TotalInWindow,
			"streak", state.ConsecutiveFailures)
	}
	s.last = state

	res := Result{State: state}
	if ev, ok := s.gate.Evaluate(state); ok {
		res.Alert = &ev
	}
	return res
}

func (s *Session) begin() {
	s.id = uuid.NewString()
	s.started = time.Now()
	s.last = State{}
}
