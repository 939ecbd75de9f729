// driverwatch runs the distraction engine against a frame source and
// serves the live dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-driverwatch/internal/config"
	"github.com/teslashibe/go-driverwatch/internal/log"
	"github.com/teslashibe/go-driverwatch/pkg/alert"
	"github.com/teslashibe/go-driverwatch/pkg/distraction"
	"github.com/teslashibe/go-driverwatch/pkg/monitor"
	"github.com/teslashibe/go-driverwatch/pkg/source"
	"github.com/teslashibe/go-driverwatch/pkg/vision"
	"github.com/teslashibe/go-driverwatch/pkg/web"
)

type options struct {
	configPath string
	metricsOut string
	port       string
	source     string
	replay     string
	preset     string
	realtime   bool
	seed       uint64
	frames     int
	debug      bool
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(2)
	}
	if err := opts.apply(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(2)
	}

	log.Init(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, opts.metricsOut); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("driverwatch failed", "error", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "", "YAML config file (overrides $"+config.EnvConfigFile+")")
	flag.StringVar(&o.metricsOut, "metrics-out", "", "Write a metrics snapshot as JSON to this file on exit")
	flag.StringVar(&o.port, "port", "", "Dashboard port")
	flag.StringVar(&o.source, "source", "", "Frame source: sim, replay, http")
	flag.StringVar(&o.replay, "replay", "", "JSON lines file for the replay source")
	flag.StringVar(&o.preset, "preset", "", "Analysis preset: default, strict, lenient")
	flag.BoolVar(&o.realtime, "realtime", false, "Pace replays at their recorded spacing")
	flag.Uint64Var(&o.seed, "seed", 0, "Seed for the simulated driver")
	flag.IntVar(&o.frames, "frames", -1, "Stop the simulated driver after this many frames")
	flag.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	flag.Parse()
	return o
}

// apply layers flags over the loaded configuration.
func (o options) apply(cfg *config.Config) error {
	if o.preset != "" {
		preset, ok := distraction.Preset(o.preset)
		if !ok {
			return fmt.Errorf("unknown preset %q", o.preset)
		}
		cfg.Preset, cfg.Analysis = o.preset, preset
	}
	if o.port != "" {
		cfg.Server.Port = o.port
	}
	if o.source != "" {
		cfg.Source.Type = o.source
	}
	if o.replay != "" {
		cfg.Source.ReplayFile = o.replay
		if o.source == "" {
			cfg.Source.Type = config.SourceReplay
		}
	}
	if o.realtime {
		cfg.Source.Realtime = true
	}
	if o.seed != 0 {
		cfg.Source.Seed = o.seed
	}
	if o.frames >= 0 {
		cfg.Source.Frames = o.frames
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	return cfg.Validate()
}

func run(ctx context.Context, cfg *config.Config, metricsOut string) error {
	session, err := distraction.NewSession(cfg.Analysis)
	if err != nil {
		return err
	}

	classifier := vision.NewClassifier(cfg.Vision)
	mon := monitor.New(session, nil, nil, monitor.Options{IdleTimeout: cfg.Server.IdleTimeout})
	srv := web.NewServer(":"+cfg.Server.Port, mon, classifier)
	mon.SetRenderer(alert.Multi{alert.NewLogDispatcher(cfg.Alerting), srv})
	mon.SetStateUpdater(srv)

	log.Info("driverwatch starting",
		"session", session.ID(),
		"preset", cfg.Preset,
		"source", cfg.Source.Type,
		"port", cfg.Server.Port)

	errc := make(chan error, 3)
	go func() { errc <- mon.Run(ctx) }()
	go func() { errc <- srv.Start(ctx) }()

	src, closeSrc, err := openSource(cfg.Source)
	if err != nil {
		return err
	}
	defer closeSrc()
	if src != nil {
		go func() {
			// Replays feed every frame and pace themselves when realtime.
			var interval time.Duration
			if cfg.Source.Type == config.SourceSim {
				interval = cfg.Source.Interval
			}
			if err := mon.Pump(ctx, src, classifier, interval); err != nil {
				errc <- fmt.Errorf("source: %w", err)
				return
			}
			log.Info("source finished, dashboard still serving")
		}()
	}

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-errc:
	}

	if metricsOut != "" {
		if werr := writeMetrics(mon, metricsOut); werr != nil {
			log.Warn("metrics export failed", "path", metricsOut, "error", werr)
		}
	}
	log.Info("driverwatch stopped", "snapshot", mon.Session().Snapshot().Stats)
	return err
}

// openSource returns nil for the http source: frames arrive through the
// dashboard's ingestion endpoints instead.
func openSource(cfg config.Source) (source.Source, func(), error) {
	switch cfg.Type {
	case config.SourceSim:
		sim := source.DefaultSimConfig()
		sim.Seed = cfg.Seed
		sim.Frames = cfg.Frames
		if cfg.Interval > 0 {
			sim.Interval = cfg.Interval
		}
		return source.NewSimulated(sim), func() {}, nil

	case config.SourceReplay:
		f, err := os.Open(cfg.ReplayFile)
		if err != nil {
			return nil, nil, err
		}
		var opts []source.ReplayOption
		if cfg.Realtime {
			opts = append(opts, source.WithRealtime())
		}
		return source.NewReplay(f, opts...), func() { f.Close() }, nil
	}
	return nil, func() {}, nil
}

func writeMetrics(mon *monitor.Monitor, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return mon.Recorder().Export(f)
}
