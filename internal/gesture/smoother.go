package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/landmark"
)

// minVelocityRange keeps the alpha mapping finite when VelocityHigh == VelocityLow.
const minVelocityRange = 1e-6

// Smoother is an exponential filter over landmark frames whose blend factor
// follows the speed of the index fingertip.
type Smoother struct {
	cfg SmootherConfig

	seeded     bool
	lastRaw    Frame
	lastSmooth Frame
	alpha      float64
}

// NewSmoother creates an unseeded Smoother.
func NewSmoother(cfg SmootherConfig) *Smoother {
	return &Smoother{cfg: cfg, alpha: cfg.Alpha}
}

// Smooth blends raw into the filter state and returns the smoothed frame.
// The first frame after construction or Reset is returned unchanged.
func (s *Smoother) Smooth(raw Frame) Frame {
	if !s.seeded {
		s.seeded = true
		s.lastRaw = raw
		s.lastSmooth = raw
		return raw
	}

	alpha := s.nextAlpha(&raw)
	s.alpha = alpha

	var out Frame
	for i, p := range raw {
		prev := s.lastSmooth[i]
		out[i] = landmark.Point3D{
			X: alpha*p.X + (1-alpha)*prev.X,
			Y: alpha*p.Y + (1-alpha)*prev.Y,
			Z: alpha*p.Z + (1-alpha)*prev.Z,
		}
	}

	s.lastRaw = raw
	s.lastSmooth = out
	return out
}

func (s *Smoother) nextAlpha(raw *Frame) float64 {
	if !s.cfg.Adaptive {
		return landmark.Clamp01(s.cfg.Alpha)
	}
	v := landmark.Distance(raw[landmark.IndexTip], s.lastRaw[landmark.IndexTip])
	span := math.Max(minVelocityRange, s.cfg.VelocityHigh-s.cfg.VelocityLow)
	t := landmark.Clamp01((v - s.cfg.VelocityLow) / span)
	return landmark.Clamp01(s.cfg.MinAlpha + (s.cfg.MaxAlpha-s.cfg.MinAlpha)*t)
}

// Alpha returns the blend factor used for the most recent frame.
func (s *Smoother) Alpha() float64 {
	return s.alpha
}

// Seeded reports whether the filter holds a previous frame.
func (s *Smoother) Seeded() bool {
	return s.seeded
}

// Reset drops all filter state so the next frame seeds again.
func (s *Smoother) Reset() {
	s.seeded = false
	s.lastRaw = Frame{}
	s.lastSmooth = Frame{}
	s.alpha = s.cfg.Alpha
}
