// Package config loads driverwatch settings from .env, an optional YAML
// file and environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-driverwatch/internal/log"
	"github.com/teslashibe/go-driverwatch/pkg/alert"
	"github.com/teslashibe/go-driverwatch/pkg/distraction"
	"github.com/teslashibe/go-driverwatch/pkg/vision"
)

// Frame sources.
const (
	SourceSim    = "sim"
	SourceReplay = "replay"
	SourceHTTP   = "http"
)

// Defaults.
const (
	DefaultPort        = "8080"
	DefaultIdleTimeout = 3 * time.Second // a few ticks at 1 Hz
)

// Environment variables read by Load.
const (
	EnvConfigFile = "DRIVERWATCH_CONFIG"
	EnvPort       = "HTTP_PORT"
	EnvLogLevel   = "LOG_LEVEL"
	EnvSource     = "SOURCE"
	EnvReplayFile = "REPLAY_FILE"
)

// Server configures the dashboard.
type Server struct {
	Port        string
	IdleTimeout time.Duration
}

// Source selects where frames come from.
type Source struct {
	Type       string
	ReplayFile string
	Realtime   bool
	Interval   time.Duration // tick rate for sim and realtime replays
	Seed       uint64
	Frames     int // 0 = unlimited
}

// Config is the complete application configuration.
type Config struct {
	Preset   string
	Analysis distraction.Config
	Alerting alert.Config
	Vision   vision.Thresholds
	Server   Server
	Source   Source
	LogLevel string
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Preset:   "default",
		Analysis: distraction.DefaultConfig(),
		Alerting: alert.DefaultConfig(),
		Vision:   vision.DefaultThresholds(),
		Server:   Server{Port: DefaultPort, IdleTimeout: DefaultIdleTimeout},
		Source:   Source{Type: SourceSim, Interval: time.Second, Seed: 1},
		LogLevel: "info",
	}
}

// Load reads .env (if present), then the YAML file at path, falling back
// to $DRIVERWATCH_CONFIG; an empty path with no variable set means
// defaults only. Environment overrides are applied last and the result
// is validated.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if cfg, err = Parse(data); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
		log.Debug("config file loaded", "path", path)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse builds a configuration from YAML. Keys left out keep the value of
// the selected analysis preset or the defaults.
func Parse(data []byte) (*Config, error) {
	var probe struct {
		Analysis struct {
			Preset string `yaml:"preset"`
		} `yaml:"analysis"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	cfg := Default()
	if name := probe.Analysis.Preset; name != "" {
		preset, ok := distraction.Preset(name)
		if !ok {
			return nil, fmt.Errorf("unknown analysis preset %q", name)
		}
		cfg.Preset = name
		cfg.Analysis = preset
	}

	f := toFile(cfg)
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	f.apply(cfg)
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvPort); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvSource); v != "" {
		c.Source.Type = v
	}
	if v := os.Getenv(EnvReplayFile); v != "" {
		c.Source.ReplayFile = v
	}
}

// Validate reports every problem in the configuration.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Analysis.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Vision.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.Source.Type {
	case SourceSim, SourceHTTP:
	case SourceReplay:
		if c.Source.ReplayFile == "" {
			errs = append(errs, errors.New("config: replay source needs a replay file"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown source %q", c.Source.Type))
	}
	if c.Source.Interval < 0 {
		errs = append(errs, errors.New("config: source interval must not be negative"))
	}
	if c.Server.Port == "" {
		errs = append(errs, errors.New("config: server port is empty"))
	}
	return errors.Join(errs...)
}
