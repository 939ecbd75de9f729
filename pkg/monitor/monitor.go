// Package monitor runs the distraction engine for one driver: it accepts
// frames from a source, processes them strictly in order on a single
// goroutine and hands alerts to a renderer.
package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/teslashibe/go-driverwatch/internal/log"
	"github.com/teslashibe/go-driverwatch/pkg/alert"
	"github.com/teslashibe/go-driverwatch/pkg/distraction"
	"github.com/teslashibe/go-driverwatch/pkg/metrics"
	"github.com/teslashibe/go-driverwatch/pkg/source"
	"github.com/teslashibe/go-driverwatch/pkg/vision"
)

// ErrStopped is returned by Feed after Run has exited.
var ErrStopped = errors.New("monitor: stopped")

// StateUpdater receives every processed tick, e.g. to refresh a dashboard.
type StateUpdater interface {
	UpdateState(res distraction.Result)
}

// Options configures a Monitor.
type Options struct {
	// IdleTimeout re-evaluates the session when no frame has arrived for
	// this long, so stale failures still expire. Zero disables it.
	IdleTimeout time.Duration

	// Now supplies wall time for idle refreshes. Defaults to time.Now.
	Now func() time.Time
}

// Monitor owns a session and its single-slot inbox.
type Monitor struct {
	session  *distraction.Session
	renderer alert.Renderer
	recorder *metrics.Recorder
	state    StateUpdater
	opts     Options

	inbox   chan distraction.FrameSignal
	stopped chan struct{}
	logger  *slog.Logger
}

// New creates a monitor. renderer and recorder may be nil.
func New(session *distraction.Session, renderer alert.Renderer, recorder *metrics.Recorder, opts Options) *Monitor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if recorder == nil {
		recorder = metrics.NewRecorder(metrics.DefaultRecentFrames)
	}
	return &Monitor{
		session:  session,
		renderer: renderer,
		recorder: recorder,
		opts:     opts,
		inbox:    make(chan distraction.FrameSignal, 1),
		stopped:  make(chan struct{}),
		logger:   log.Component("monitor"),
	}
}

// SetRenderer replaces the alert renderer. Call before Run.
func (m *Monitor) SetRenderer(r alert.Renderer) {
	m.renderer = r
}

// SetStateUpdater sets the dashboard state updater. Call before Run.
func (m *Monitor) SetStateUpdater(s StateUpdater) {
	m.state = s
}

// Session returns the monitored session.
func (m *Monitor) Session() *distraction.Session { return m.session }

// Recorder returns the metrics recorder.
func (m *Monitor) Recorder() *metrics.Recorder { return m.recorder }

// Offer hands a frame to the analyzer without blocking. When a frame is
// already waiting, the new one is dropped and Offer returns false.
func (m *Monitor) Offer(sig distraction.FrameSignal) bool {
	select {
	case m.inbox <- sig:
		return true
	default:
		m.recorder.IncDropped()
		m.logger.Debug("frame dropped, analyzer busy", "timestamp", sig.Timestamp)
		return false
	}
}

// Feed waits for the slot to free up, for offline replays where every
// frame must be processed.
func (m *Monitor) Feed(ctx context.Context, sig distraction.FrameSignal) error {
	select {
	case m.inbox <- sig:
		return nil
	case <-m.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset starts a new session. Safe to call while Run is active; it takes
// effect between ticks.
func (m *Monitor) Reset() {
	m.session.Reset()
	m.recorder.Reset()
}

// Run processes frames until ctx is cancelled. It is the only goroutine
// that ticks the session.
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.stopped)

	var idle <-chan time.Time
	var idleTicker *time.Ticker
	if m.opts.IdleTimeout > 0 {
		idleTicker = time.NewTicker(m.opts.IdleTimeout)
		defer idleTicker.Stop()
		idle = idleTicker.C
	}

	m.logger.Info("monitor started", "session", m.session.ID(), "idle_timeout", m.opts.IdleTimeout)

	// Idle refreshes stay on the frame clock: the last frame's timestamp
	// plus the wall time elapsed since it arrived.
	var lastSig time.Time
	lastFrame := m.opts.Now()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped", "session", m.session.ID())
			return ctx.Err()

		case sig := <-m.inbox:
			if _, err := m.Process(ctx, sig); err == nil {
				lastSig = sig.Timestamp
				lastFrame = m.opts.Now()
			}

		case <-idle:
			elapsed := m.opts.Now().Sub(lastFrame)
			if !lastSig.IsZero() && elapsed >= m.opts.IdleTimeout {
				m.refresh(ctx, lastSig.Add(elapsed))
			}
		}
	}
}

// Process runs one tick synchronously. Run calls it for each frame; tests
// and single-threaded embedders may call it directly instead.
func (m *Monitor) Process(ctx context.Context, sig distraction.FrameSignal) (distraction.Result, error) {
	started := time.Now()
	res, err := m.session.Tick(sig)
	if err != nil {
		m.recorder.IncRejected()
		m.logger.Warn("frame rejected", "error", err)
		return res, err
	}

	m.recorder.RecordFrame(metrics.FrameRecord{
		Timestamp:   sig.Timestamp,
		FaceForward: sig.FaceForward,
		EyesForward: sig.EyesForward,
		Confidence:  sig.Confidence,
		Level:       res.State.Level,
		Uncertain:   res.State.Uncertain,
		Alerted:     res.Alert != nil,
		Latency:     time.Since(started),
	})
	m.publish(ctx, res)
	return res, nil
}

func (m *Monitor) refresh(ctx context.Context, now time.Time) {
	res := m.session.Refresh(now)
	if res.Alert != nil {
		m.recorder.IncAlerts()
	}
	m.publish(ctx, res)
}

func (m *Monitor) publish(ctx context.Context, res distraction.Result) {
	if m.state != nil {
		m.state.UpdateState(res)
	}
	if res.Alert == nil || m.renderer == nil {
		return
	}
	if err := m.renderer.Render(ctx, *res.Alert); err != nil {
		m.logger.Error("alert render failed", "level", res.Alert.Level, "error", err)
	}
}

// Pump reads observations from src, classifies them and offers them to
// the monitor once per interval. With interval zero it feeds as fast as
// the analyzer accepts, dropping nothing. Pump returns nil when src is
// exhausted.
func (m *Monitor) Pump(ctx context.Context, src source.Source, classifier *vision.Classifier, interval time.Duration) error {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tick:
			}
		}

		obs, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			m.logger.Info("source exhausted")
			return nil
		}
		if err != nil {
			return err
		}

		sig := classifier.Classify(obs)
		if tick != nil {
			m.Offer(sig)
			continue
		}
		if err := m.Feed(ctx, sig); err != nil {
			return err
		}
	}
}
