package config

import (
	"time"

	"github.com/teslashibe/go-driverwatch/pkg/alert"
	"github.com/teslashibe/go-driverwatch/pkg/vision"
)

// fileConfig mirrors config.yaml. Durations are in seconds.
type fileConfig struct {
	Analysis struct {
		Preset          string  `yaml:"preset"`
		HistoryWindow   float64 `yaml:"history_window"`
		MaxEventsBuffer int     `yaml:"max_events_buffer"`
		Warning         int     `yaml:"warning_threshold"`
		Critical        int     `yaml:"critical_threshold"`
		Severe          int     `yaml:"severe_threshold"`
		Burst           int     `yaml:"consecutive_burst_threshold"`
		MinConfidence   float64 `yaml:"min_confidence"`
	} `yaml:"analysis"`

	Alerting struct {
		alert.Config `yaml:",inline"`
		Cooldown     float64 `yaml:"cooldown"`
	} `yaml:"alerting"`

	Vision vision.Thresholds `yaml:"vision"`

	Server struct {
		Port        string  `yaml:"port"`
		IdleTimeout float64 `yaml:"idle_timeout"`
	} `yaml:"server"`

	Source struct {
		Type       string  `yaml:"type"`
		ReplayFile string  `yaml:"replay_file"`
		Realtime   bool    `yaml:"realtime"`
		Interval   float64 `yaml:"interval"`
		Seed       uint64  `yaml:"seed"`
		Frames     int     `yaml:"frames"`
	} `yaml:"source"`

	LogLevel string `yaml:"log_level"`
}

func toFile(c *Config) fileConfig {
	var f fileConfig
	a := &f.Analysis
	a.Preset = c.Preset
	a.HistoryWindow = c.Analysis.Window.Seconds()
	a.MaxEventsBuffer = c.Analysis.Capacity
	a.Warning = c.Analysis.Thresholds.Warning
	a.Critical = c.Analysis.Thresholds.Critical
	a.Severe = c.Analysis.Thresholds.Severe
	a.Burst = c.Analysis.BurstThreshold
	a.MinConfidence = c.Analysis.MinConfidence

	f.Alerting.Config = c.Alerting
	f.Alerting.Cooldown = c.Analysis.Cooldown.Seconds()
	f.Vision = c.Vision

	f.Server.Port = c.Server.Port
	f.Server.IdleTimeout = c.Server.IdleTimeout.Seconds()

	f.Source.Type = c.Source.Type
	f.Source.ReplayFile = c.Source.ReplayFile
	f.Source.Realtime = c.Source.Realtime
	f.Source.Interval = c.Source.Interval.Seconds()
	f.Source.Seed = c.Source.Seed
	f.Source.Frames = c.Source.Frames

	f.LogLevel = c.LogLevel
	return f
}

func (f fileConfig) apply(c *Config) {
	a := f.Analysis
	c.Analysis.Window = seconds(a.HistoryWindow)
	c.Analysis.Capacity = a.MaxEventsBuffer
	c.Analysis.Thresholds.Warning = a.Warning
	c.Analysis.Thresholds.Critical = a.Critical
	c.Analysis.Thresholds.Severe = a.Severe
	c.Analysis.BurstThreshold = a.Burst
	c.Analysis.MinConfidence = a.MinConfidence
	c.Analysis.Cooldown = seconds(f.Alerting.Cooldown)

	c.Alerting = f.Alerting.Config
	c.Vision = f.Vision

	c.Server.Port = f.Server.Port
	c.Server.IdleTimeout = seconds(f.Server.IdleTimeout)

	c.Source = Source{
		Type:       f.Source.Type,
		ReplayFile: f.Source.ReplayFile,
		Realtime:   f.Source.Realtime,
		Interval:   seconds(f.Source.Interval),
		Seed:       f.Source.Seed,
		Frames:     f.Source.Frames,
	}
	c.LogLevel = f.LogLevel
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
