package source

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func TestReplay_ReadsOffsetsAndSkipsComments(t *testing.T) {
	input := `# recorded on the test track
{"t": 0, "face_detected": true, "pose": {"yaw": 3}, "confidence": 0.92}

{"t": 1.5, "face_detected": true, "pose": {"yaw": 34}, "gaze": {"x": 0.4}, "confidence": 0.88}
{"timestamp": "2026-03-01T09:00:00Z", "face_detected": false, "confidence": 0.7}
`
	r := NewReplay(strings.NewReader(input), WithBase(base))
	ctx := context.Background()

	first, err := r.Next(ctx)
	require.NoError(t, err)
	assert.True(t, first.Timestamp.Equal(base))
	assert.InDelta(t, 3, first.Pose.Yaw, 1e-9)
	assert.InDelta(t, 0.92, first.Confidence, 1e-9)

	second, err := r.Next(ctx)
	require.NoError(t, err)
	assert.True(t, second.Timestamp.Equal(base.Add(1500*time.Millisecond)))
	assert.InDelta(t, 0.4, second.Gaze.X, 1e-9)

	third, err := r.Next(ctx)
	require.NoError(t, err)
	assert.False(t, third.FaceDetected)
	assert.True(t, third.Timestamp.Equal(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))

	_, err = r.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReplay_PoseInRadians(t *testing.T) {
	r := NewReplay(strings.NewReader(`{"t": 0, "face_detected": true, "pose_rad": {"yaw": 0.5236}, "confidence": 0.9}`),
		WithBase(base))

	obs, err := r.Next(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 30, obs.Pose.Yaw, 0.01)
}

func TestReplay_MalformedLineReportsLineNumber(t *testing.T) {
	r := NewReplay(strings.NewReader("{\"t\": 0}\n{not json}\n"), WithBase(base))

	_, err := r.Next(context.Background())
	require.NoError(t, err)

	_, err = r.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReplay_RealtimeHonoursCancellation(t *testing.T) {
	input := "{\"t\": 0}\n{\"t\": 60}\n"
	r := NewReplay(strings.NewReader(input), WithBase(base), WithRealtime())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Next(ctx)
	require.NoError(t, err)

	_, err = r.Next(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestSimulated_DeterministicForSeed(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.Start = base
	cfg.Frames = 200

	a, b := NewSimulated(cfg), NewSimulated(cfg)
	ctx := context.Background()
	for i := 0; i < 200; i++ {
		oa, err := a.Next(ctx)
		require.NoError(t, err)
		ob, err := b.Next(ctx)
		require.NoError(t, err)
		require.Equal(t, oa, ob, "frame %d differs", i)
	}

	_, err := a.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSimulated_FramesAreEvenlySpacedAndValid(t *testing.T) {
	cfg := DefaultSimConfig()
	cfg.Start = base
	cfg.Interval = 500 * time.Millisecond
	cfg.Frames = 1000
	cfg.EpisodeRate = 0.2
	sim := NewSimulated(cfg)

	episodes := map[Episode]int{}
	for i := 0; i < cfg.Frames; i++ {
		obs, err := sim.Next(context.Background())
		require.NoError(t, err)
		require.True(t, obs.Timestamp.Equal(base.Add(time.Duration(i)*cfg.Interval)))
		require.GreaterOrEqual(t, obs.Confidence, 0.0)
		require.LessOrEqual(t, obs.Confidence, 1.0)
		episodes[sim.Episode()]++
	}

	assert.Greater(t, episodes[Attentive], 0)
	assert.Greater(t, len(episodes), 2, "expected several episode kinds, got %v", episodes)
}

func TestSimulated_StopsOnCancelledContext(t *testing.T) {
	sim := NewSimulated(DefaultSimConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
