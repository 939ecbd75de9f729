package distraction

import "time"

// State is the snapshot derived after each tick.
type State struct {
	Timestamp           time.Time   `json:"timestamp"`
	Level               Level       `json:"level"`
	Consequence         Consequence `json:"consequence"`
	TotalInWindow       int         `json:"total_in_window"`
	FaceInWindow        int         `json:"face_in_window"`
	EyesInWindow        int         `json:"eyes_in_window"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
	Failed              bool        `json:"failed"`
	Kind                FailureKind `json:"kind,omitempty"`
	Uncertain           bool        `json:"uncertain"`
}

// Stats are cumulative per-session counters. Unlike the window counts
// they only reset with the session.
type Stats struct {
	Ticks        int `json:"ticks"`
	Passes       int `json:"passes"`
	FaceFailures int `json:"face_failures"`
	EyeFailures  int `json:"eye_failures"`
	BothFailures int `json:"both_failures"`
	Uncertain    int `json:"uncertain"`
}

// TotalFailures returns every failing tick regardless of kind.
func (s Stats) TotalFailures() int {
	return s.FaceFailures + s.EyeFailures + s.BothFailures
}

// Analyzer turns frame signals into history updates and a derived level.
// Ticks must be processed sequentially and in timestamp order.
type Analyzer struct {
	config  Config
	history *History

	consecutive int
	lastTick    time.Time
	stats       Stats
}

// NewAnalyzer validates cfg and creates an analyzer with an empty history.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		config:  cfg,
		history: NewHistory(cfg.Window, cfg.Capacity),
	}, nil
}

// Process validates sig, updates the history and returns the new state.
// An invalid signal returns an error wrapping ErrInvalidSignal and leaves
// the analyzer untouched.
func (a *Analyzer) Process(sig FrameSignal) (State, error) {
	if err := a.validate(sig); err != nil {
		return State{}, err
	}

	now := sig.Timestamp
	a.lastTick = now
	a.stats.Ticks++

	state := State{Timestamp: now}

	switch kind, failed := sig.Kind(); {
	case sig.Confidence < a.config.MinConfidence:
		// Unknown: neither counted nor allowed to break the streak.
		state.Uncertain = true
		a.stats.Uncertain++
	case failed:
		a.history.Record(FailureEvent{Timestamp: now, Kind: kind})
		a.consecutive++
		state.Failed = true
		state.Kind = kind
		a.countFailure(kind)
	default:
		a.consecutive = 0
		a.stats.Passes++
	}

	a.derive(&state, now)
	return state, nil
}

// Evaluate recomputes the state at now without a new observation, which
// lets stale failures age out while the feed is idle.
// A later now also becomes the ordering bound for Process, since the
// history has already been trimmed at that time.
func (a *Analyzer) Evaluate(now time.Time) State {
	if now.After(a.lastTick) {
		a.lastTick = now
	}
	state := State{Timestamp: now}
	a.derive(&state, now)
	return state
}

// Reset clears history, streak and counters for a new session.
func (a *Analyzer) Reset() {
	a.history.Clear()
	a.consecutive = 0
	a.lastTick = time.Time{}
	a.stats = Stats{}
}

// Stats returns the cumulative counters.
func (a *Analyzer) Stats() Stats { return a.stats }

// History exposes the event store for inspection. Callers must not
// mutate it outside the analyzer's goroutine.
func (a *Analyzer) History() *History { return a.history }

// Consecutive returns the current failing streak.
func (a *Analyzer) Consecutive() int { return a.consecutive }

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config { return a.config }

func (a *Analyzer) derive(state *State, now time.Time) {
	state.TotalInWindow = a.history.CountInWindow(nil, now)
	state.FaceInWindow = a.history.CountInWindow(InvolvesFace, now)
	state.EyesInWindow = a.history.CountInWindow(InvolvesEyes, now)
	state.ConsecutiveFailures = a.consecutive
	state.Level = a.config.LevelFor(state.TotalInWindow, a.consecutive)
	state.Consequence = state.Level.Consequence()
}

func (a *Analyzer) countFailure(kind FailureKind) {
	switch kind {
	case FaceFailure:
		a.stats.FaceFailures++
	case EyeFailure:
		a.stats.EyeFailures++
	case BothFailure:
		a.stats.BothFailures++
	}
}

func (a *Analyzer) validate(sig FrameSignal) error {
	if err := sig.Validate(); err != nil {
		return err
	}
	if !a.lastTick.IsZero() && sig.Timestamp.Before(a.lastTick) {
		return &SignalError{Field: "timestamp", Reason: "precedes the previous tick"}
	}
	return nil
}
