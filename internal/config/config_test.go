package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-driverwatch/pkg/distraction"
)

const sampleYAML = `
analysis:
  history_window: 60
  warning_threshold: 4
  critical_threshold: 8
  severe_threshold: 16
  consecutive_burst_threshold: 6
alerting:
  cooldown: 2.5
  audible_alerts_enabled: false
vision:
  yaw_threshold: 25
server:
  port: "9090"
source:
  type: replay
  replay_file: drive.jsonl
  realtime: true
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, distraction.DefaultConfig(), cfg.Analysis)
	assert.Equal(t, SourceSim, cfg.Source.Type)
	assert.Greater(t, cfg.Server.IdleTimeout, 2*cfg.Source.Interval,
		"idle refresh must not interleave with regular ticks")
}

func TestParse_OverridesOnlyGivenKeys(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, cfg.Analysis.Window)
	assert.Equal(t, 100, cfg.Analysis.Capacity, "capacity keeps its default")
	assert.Equal(t, distraction.Thresholds{Warning: 4, Critical: 8, Severe: 16}, cfg.Analysis.Thresholds)
	assert.Equal(t, 6, cfg.Analysis.BurstThreshold)
	assert.Equal(t, 0.5, cfg.Analysis.MinConfidence)
	assert.Equal(t, 2500*time.Millisecond, cfg.Analysis.Cooldown)

	assert.True(t, cfg.Alerting.Enabled)
	assert.True(t, cfg.Alerting.Visual)
	assert.False(t, cfg.Alerting.Audible)

	assert.Equal(t, 25.0, cfg.Vision.Yaw)
	assert.Equal(t, 15.0, cfg.Vision.Pitch)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, SourceReplay, cfg.Source.Type)
	assert.Equal(t, "drive.jsonl", cfg.Source.ReplayFile)
	assert.True(t, cfg.Source.Realtime)
	assert.Equal(t, time.Second, cfg.Source.Interval)
}

func TestParse_PresetIsBase(t *testing.T) {
	cfg, err := Parse([]byte("analysis:\n  preset: strict\n  min_confidence: 0.7\n"))
	require.NoError(t, err)

	want := distraction.StrictConfig()
	want.MinConfidence = 0.7
	assert.Equal(t, want, cfg.Analysis)
	assert.Equal(t, "strict", cfg.Preset)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("analysis:\n  preset: reckless\n"))
	assert.ErrorContains(t, err, "reckless")

	_, err = Parse([]byte("analysis: [oops"))
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, sampleYAML)
	t.Setenv(EnvConfigFile, path)
	t.Setenv(EnvPort, "7000")
	t.Setenv(EnvSource, SourceHTTP)
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, SourceHTTP, cfg.Source.Type)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 60*time.Second, cfg.Analysis.Window)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_CollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.Analysis.Capacity = 0
	cfg.Source.Type = SourceReplay
	cfg.Server.Port = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, distraction.ErrInvalidConfig)
	assert.ErrorContains(t, err, "replay file")
	assert.ErrorContains(t, err, "port")

	cfg = Default()
	cfg.Source.Type = "camera"
	assert.ErrorContains(t, cfg.Validate(), `unknown source "camera"`)
}
