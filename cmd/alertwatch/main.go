// alertwatch subscribes to a driverwatch dashboard and prints alerts as
// they are raised, for a driver-side display on a separate device.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-driverwatch/internal/httpc"
	"github.com/teslashibe/go-driverwatch/internal/log"
	"github.com/teslashibe/go-driverwatch/pkg/distraction"
)

func main() {
	addr := flag.String("addr", "http://localhost:8080", "Dashboard base URL")
	retry := flag.Duration("retry", 3*time.Second, "Delay before reconnecting")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := os.Getenv("LOG_LEVEL")
	if *debug {
		level = "debug"
	}
	log.Init(level)

	base, err := url.Parse(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid address: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var snap distraction.Snapshot
	if err := httpc.GetJSON(ctx, base.JoinPath("/api/status").String(), &snap); err != nil {
		log.Warn("status unavailable", "error", err)
	} else {
		fmt.Printf("session %s: %s (%d failures in window)\n",
			snap.SessionID, snap.State.Level, snap.State.TotalInWindow)
	}

	w := &watcher{url: wsURL(base), out: os.Stdout}
	for {
		err := w.watch(ctx)
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, errBadHandshake) {
			log.Error("dashboard refused the subscription", "error", err)
			os.Exit(1)
		}
		log.Warn("alert stream lost, reconnecting", "error", err, "in", *retry)
		select {
		case <-ctx.Done():
			return
		case <-time.After(*retry):
		}
	}
}
