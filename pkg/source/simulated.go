package source

import (
	"context"
	"io"
	"math/rand/v2"
	"time"

	"github.com/teslashibe/go-driverwatch/pkg/vision"
)

// Episode is a kind of simulated distraction.
type Episode int

const (
	Attentive Episode = iota
	MirrorCheck
	PhoneGlance
	LookingAway
	Drowsy
)

// SimConfig tunes the simulated driver.
type SimConfig struct {
	Seed          uint64
	Start         time.Time
	Interval      time.Duration // spacing of simulated frames
	Frames        int           // 0 = unlimited
	EpisodeRate   float64       // chance per attentive frame that an episode begins
	NoFaceRate    float64       // chance a frame has no detectable face
	LowConfRate   float64       // chance a frame comes back with poor confidence
	MaxEpisodeLen int           // frames
}

// DefaultSimConfig returns a driver who is distracted now and then.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Seed:          1,
		Start:         time.Now(),
		Interval:      time.Second,
		EpisodeRate:   0.05,
		NoFaceRate:    0.01,
		LowConfRate:   0.03,
		MaxEpisodeLen: 12,
	}
}

// Simulated generates observations on a virtual clock, so runs are
// reproducible for a given seed.
type Simulated struct {
	cfg     SimConfig
	rng     *rand.Rand
	frame   int
	episode Episode
	left    int
}

// NewSimulated creates a simulated source.
func NewSimulated(cfg SimConfig) *Simulated {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.MaxEpisodeLen < 1 {
		cfg.MaxEpisodeLen = 1
	}
	return &Simulated{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

// Episode returns the episode the last frame belonged to.
func (s *Simulated) Episode() Episode { return s.episode }

// Next returns the next simulated frame.
func (s *Simulated) Next(ctx context.Context) (vision.Observation, error) {
	if err := ctx.Err(); err != nil {
		return vision.Observation{}, err
	}
	if s.cfg.Frames > 0 && s.frame >= s.cfg.Frames {
		return vision.Observation{}, io.EOF
	}

	obs := vision.Observation{
		Timestamp:    s.cfg.Start.Add(time.Duration(s.frame) * s.cfg.Interval),
		FaceDetected: true,
		Confidence:   0.85 + 0.15*s.rng.Float64(),
	}
	s.frame++

	s.advance()
	s.shape(&obs)

	switch r := s.rng.Float64(); {
	case r < s.cfg.NoFaceRate:
		obs.FaceDetected = false
		obs.Pose = vision.Pose{}
		obs.Gaze = vision.Gaze{}
	case r < s.cfg.NoFaceRate+s.cfg.LowConfRate:
		obs.Confidence = 0.4 * s.rng.Float64()
	}
	return obs, nil
}

func (s *Simulated) advance() {
	if s.left > 0 {
		s.left--
		if s.left == 0 {
			s.episode = Attentive
		}
		return
	}
	if s.rng.Float64() >= s.cfg.EpisodeRate {
		s.episode = Attentive
		return
	}
	s.episode = Episode(1 + s.rng.IntN(4))
	s.left = 1 + s.rng.IntN(s.cfg.MaxEpisodeLen)
	if s.episode == MirrorCheck && s.left > 2 {
		s.left = 2
	}
}

// shape fills in pose and gaze for the current episode, with small jitter.
func (s *Simulated) shape(obs *vision.Observation) {
	jitter := func(scale float64) float64 { return (s.rng.Float64()*2 - 1) * scale }

	obs.Pose = vision.Pose{Pitch: jitter(5), Yaw: jitter(6), Roll: jitter(4)}
	obs.Gaze = vision.Gaze{X: jitter(0.1), Y: jitter(0.1)}

	switch s.episode {
	case MirrorCheck:
		obs.Pose.Yaw = -30 + jitter(5)
		obs.Gaze.X = -0.5
	case PhoneGlance:
		obs.Pose.Pitch = 32 + jitter(6)
		obs.Gaze.Y = 0.6
	case LookingAway:
		obs.Pose.Yaw = 45 + jitter(10)
	case Drowsy:
		obs.Pose.Pitch = 10 + jitter(3)
		obs.Gaze.Y = 0.5 + jitter(0.1)
	}
}
