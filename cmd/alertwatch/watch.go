package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-driverwatch/internal/log"
	"github.com/teslashibe/go-driverwatch/pkg/distraction"
)

var errBadHandshake = errors.New("alertwatch: handshake rejected")

// envelope matches the dashboard's websocket frames.
type envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type alertPayload struct {
	ID string `json:"id"`
	distraction.AlertEvent
}

type watcher struct {
	url string
	out io.Writer
}

func wsURL(base *url.URL) string {
	u := *base.JoinPath("/ws/alerts")
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String()
}

// watch prints alerts until the connection drops or ctx ends.
func (w *watcher) watch(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("%w: %s", errBadHandshake, resp.Status)
		}
		return err
	}
	defer conn.Close()
	log.Info("subscribed", "url", w.url)

	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	}()

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return err
		}
		w.print(env)
	}
}

func (w *watcher) print(env envelope) {
	switch env.Type {
	case "alert":
		var a alertPayload
		if err := json.Unmarshal(env.Payload, &a); err != nil {
			log.Warn("bad alert payload", "error", err)
			return
		}
		icon := map[distraction.Level]string{
			distraction.Safe:     "✅",
			distraction.Warning:  "⚠️ ",
			distraction.Critical: "🚨",
			distraction.Severe:   "🛑",
		}[a.Level]
		fmt.Fprintf(w.out, "%s %s %s: %s (%d in window, %d consecutive)\n",
			a.Timestamp.Local().Format("15:04:05"), icon, a.Level, a.Recommendation,
			a.TotalInWindow, a.Consecutive)
	case "reset":
		fmt.Fprintf(w.out, "%s 🔄 session reset\n", env.Timestamp.Local().Format("15:04:05"))
	}
}
