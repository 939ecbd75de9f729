package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-driverwatch/pkg/distraction"
	"github.com/teslashibe/go-driverwatch/pkg/hub"
	"github.com/teslashibe/go-driverwatch/pkg/vision"
)

// ConfigView is the analysis configuration with durations in seconds.
type ConfigView struct {
	WindowSeconds   float64                `json:"window_seconds"`
	Capacity        int                    `json:"capacity"`
	Thresholds      distraction.Thresholds `json:"thresholds"`
	BurstThreshold  int                    `json:"consecutive_burst_threshold"`
	MinConfidence   float64                `json:"min_confidence"`
	CooldownSeconds float64                `json:"cooldown_seconds"`
	Vision          *vision.Thresholds     `json:"vision,omitempty"`
}

// StatsView combines session statistics with process counters.
type StatsView struct {
	SessionID     string            `json:"session_id"`
	StartedAt     time.Time         `json:"started_at"`
	Stats         distraction.Stats `json:"stats"`
	TotalFailures int               `json:"total_failures"`
	Rejected      int64             `json:"rejected"`
	Dropped       int64             `json:"dropped"`
}

// signalRequest is the body of POST /api/signals. A missing timestamp is
// stamped with the server clock.
type signalRequest struct {
	Timestamp   time.Time `json:"timestamp"`
	FaceForward bool      `json:"face_forward"`
	EyesForward bool      `json:"eyes_forward"`
	Confidence  *float64  `json:"confidence"`
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.monitor.Session().Snapshot())
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	snap := s.monitor.Session().Snapshot()
	counters := s.monitor.Recorder().Counters()
	return c.JSON(StatsView{
		SessionID:     snap.SessionID,
		StartedAt:     snap.StartedAt,
		Stats:         snap.Stats,
		TotalFailures: snap.Stats.TotalFailures(),
		Rejected:      counters.Rejected,
		Dropped:       counters.Dropped,
	})
}

func (s *Server) handleConfig(c *fiber.Ctx) error {
	cfg := s.monitor.Session().Config()
	view := ConfigView{
		WindowSeconds:   cfg.Window.Seconds(),
		Capacity:        cfg.Capacity,
		Thresholds:      cfg.Thresholds,
		BurstThreshold:  cfg.BurstThreshold,
		MinConfidence:   cfg.MinConfidence,
		CooldownSeconds: cfg.Cooldown.Seconds(),
	}
	if s.classifier != nil {
		t := s.classifier.Thresholds()
		view.Vision = &t
	}
	return c.JSON(view)
}

func (s *Server) handleAlerts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must not be negative")
	}
	return c.JSON(s.Alerts(limit))
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.JSON(s.monitor.Recorder().Snapshot())
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	id := s.reset()
	s.logger.Info("session reset", "session", id)
	return c.JSON(fiber.Map{"session_id": id})
}

func (s *Server) handleSignal(c *fiber.Ctx) error {
	var req signalRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed signal: "+err.Error())
	}
	if req.Confidence == nil {
		return fiber.NewError(fiber.StatusBadRequest, "confidence is required")
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}
	return s.offer(c, distraction.FrameSignal{
		Timestamp:   req.Timestamp,
		FaceForward: req.FaceForward,
		EyesForward: req.EyesForward,
		Confidence:  *req.Confidence,
	})
}

func (s *Server) handleObservation(c *fiber.Ctx) error {
	if s.classifier == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "no classifier configured")
	}
	var obs vision.Observation
	if err := c.BodyParser(&obs); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed observation: "+err.Error())
	}
	if obs.Timestamp.IsZero() {
		obs.Timestamp = time.Now()
	}
	return s.offer(c, s.classifier.Classify(obs))
}

// offer validates sig and hands it to the monitor. Ordering against
// earlier ticks is checked later by the analyzer.
func (s *Server) offer(c *fiber.Ctx, sig distraction.FrameSignal) error {
	if err := sig.Validate(); err != nil {
		s.monitor.Recorder().IncRejected()
		return err
	}
	if !s.monitor.Offer(sig) {
		return fiber.NewError(fiber.StatusTooManyRequests, "analyzer busy, frame dropped")
	}
	return c.Status(fiber.StatusAccepted).JSON(sig)
}

func (s *Server) handleAlertsWS(conn *websocket.Conn) {
	hub.NewClient(s.alertHub, conn).Run()
}

// handleStatusWS sends the current snapshot before streaming updates.
func (s *Server) handleStatusWS(conn *websocket.Conn) {
	client := hub.NewClient(s.statusHub, conn)

	frame, err := hub.NewEnvelope(hub.TypeState, s.monitor.Session().Snapshot().State).Encode()
	if err == nil {
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			s.logger.Debug("initial status write failed", "error", err)
		}
	}
	client.Run()
}
