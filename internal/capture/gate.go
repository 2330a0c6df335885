package capture

import "time"

// Frame-rate defaults for the activity gate.
const (
	DefaultIdleFPS         = 5
	DefaultActiveFPS       = 30
	DefaultIdleTimeout     = 2 * time.Second
	DefaultMotionThreshold = 1.0
)

// GateConfig controls when the capture loop runs hand detection.
type GateConfig struct {
	IdleFPS         int           `yaml:"idle_fps" json:"idle_fps"`
	ActiveFPS       int           `yaml:"active_fps" json:"active_fps"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	MotionThreshold float64       `yaml:"motion_threshold" json:"motion_threshold"`
}

// DefaultGateConfig returns the default gate settings.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		IdleFPS:         DefaultIdleFPS,
		ActiveFPS:       DefaultActiveFPS,
		IdleTimeout:     DefaultIdleTimeout,
		MotionThreshold: DefaultMotionThreshold,
	}
}

// ActivityGate switches between an idle state, where only motion is checked,
// and an active state, where every frame goes to the hand detector. It goes
// active on motion and back to idle after IdleTimeout without motion.
type ActivityGate struct {
	cfg        GateConfig
	active     bool
	lastMotion time.Time
}

// NewActivityGate creates an idle gate.
func NewActivityGate(cfg GateConfig) *ActivityGate {
	if cfg.IdleFPS <= 0 {
		cfg.IdleFPS = DefaultIdleFPS
	}
	if cfg.ActiveFPS <= 0 {
		cfg.ActiveFPS = DefaultActiveFPS
	}
	return &ActivityGate{cfg: cfg}
}

// Observe records whether motion was seen at now. It returns the resulting
// state and whether it changed.
func (g *ActivityGate) Observe(motion bool, now time.Time) (active, changed bool) {
	if motion {
		g.lastMotion = now
		if !g.active {
			g.active = true
			return true, true
		}
		return true, false
	}
	if g.active && now.Sub(g.lastMotion) > g.cfg.IdleTimeout {
		g.active = false
		return false, true
	}
	return g.active, false
}

// Active reports the current state.
func (g *ActivityGate) Active() bool {
	return g.active
}

// FPS returns the frame rate for the current state.
func (g *ActivityGate) FPS() int {
	if g.active {
		return g.cfg.ActiveFPS
	}
	return g.cfg.IdleFPS
}

// Interval returns the frame period for the current state.
func (g *ActivityGate) Interval() time.Duration {
	return time.Second / time.Duration(g.FPS())
}
