// Package web serves the live dashboard: REST endpoints for the current
// session plus websocket feeds of alerts and per-tick state.
package web

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-driverwatch/internal/log"
	"github.com/teslashibe/go-driverwatch/pkg/distraction"
	"github.com/teslashibe/go-driverwatch/pkg/hub"
	"github.com/teslashibe/go-driverwatch/pkg/monitor"
	"github.com/teslashibe/go-driverwatch/pkg/vision"
)

// DefaultAlertBuffer is how many alerts GET /api/alerts can return.
const DefaultAlertBuffer = 100

// AlertRecord is an alert as kept and served by the dashboard.
type AlertRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Received  time.Time `json:"received"`
	distraction.AlertEvent
}

// Server is the dashboard. It renders alerts and receives state updates
// from a monitor.
type Server struct {
	app  *fiber.App
	addr string

	monitor    *monitor.Monitor
	classifier *vision.Classifier

	alertHub  *hub.Hub
	statusHub *hub.Hub

	mu     sync.RWMutex
	alerts []AlertRecord

	logger *slog.Logger
}

// NewServer builds the fiber app for mon. addr is passed to Listen, e.g.
// ":8080".
func NewServer(addr string, mon *monitor.Monitor, classifier *vision.Classifier) *Server {
	s := &Server{
		addr:       addr,
		monitor:    mon,
		classifier: classifier,
		alertHub:   hub.New("alerts"),
		statusHub:  hub.New("status"),
		alerts:     make([]AlertRecord, 0, DefaultAlertBuffer),
		logger:     log.Component("web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "driverwatch",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/stats", s.handleStats)
	api.Get("/config", s.handleConfig)
	api.Get("/alerts", s.handleAlerts)
	api.Get("/metrics", s.handleMetrics)
	api.Post("/reset", s.handleReset)
	api.Post("/signals", s.handleSignal)
	api.Post("/observations", s.handleObservation)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/alerts", websocket.New(s.handleAlertsWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Start runs the hubs and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.alertHub.Run(ctx)
	go s.statusHub.Run(ctx)

	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			s.logger.Warn("shutdown failed", "error", err)
		}
	}()

	s.logger.Info("dashboard listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Render records ev and pushes it to /ws/alerts subscribers.
func (s *Server) Render(_ context.Context, ev distraction.AlertEvent) error {
	rec := AlertRecord{
		ID:         uuid.NewString(),
		SessionID:  s.monitor.Session().ID(),
		Received:   time.Now().UTC(),
		AlertEvent: ev,
	}

	s.mu.Lock()
	if len(s.alerts) == cap(s.alerts) {
		copy(s.alerts, s.alerts[1:])
		s.alerts = s.alerts[:len(s.alerts)-1]
	}
	s.alerts = append(s.alerts, rec)
	s.mu.Unlock()

	return s.alertHub.Publish(hub.TypeAlert, rec)
}

// UpdateState pushes every tick to /ws/status.
func (s *Server) UpdateState(res distraction.Result) {
	s.publish(s.statusHub, hub.TypeState, res.State)
}

// publish broadcasts payload and logs encoding failures.
func (s *Server) publish(h *hub.Hub, typ string, payload any) {
	if err := h.Publish(typ, payload); err != nil {
		s.logger.Warn("broadcast failed", "type", typ, "error", err)
	}
}

// Alerts returns up to limit recent alerts, newest first. limit <= 0
// returns all of them.
func (s *Server) Alerts(limit int) []AlertRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.alerts)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]AlertRecord, 0, n)
	for i := len(s.alerts) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.alerts[i])
	}
	return out
}

func (s *Server) reset() string {
	s.monitor.Reset()

	s.mu.Lock()
	s.alerts = s.alerts[:0]
	s.mu.Unlock()

	id := s.monitor.Session().ID()
	s.publish(s.alertHub, hub.TypeReset, fiber.Map{"session_id": id})
	s.publish(s.statusHub, hub.TypeReset, fiber.Map{"session_id": id})
	return id
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, distraction.ErrInvalidSignal):
		code = fiber.StatusBadRequest
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
