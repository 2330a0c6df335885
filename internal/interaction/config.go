package interaction

import (
	"errors"
	"fmt"
	"time"
)

// Config tunes the state machine.
type Config struct {
	// LongPressDuration is how long FIST must be held in WHOLE before drag
	// sensitivity escalates and the effective gesture reads as PINCH.
	LongPressDuration time.Duration `yaml:"long_press_duration" json:"long_press_duration"`

	FistSensitivity      float64 `yaml:"fist_sensitivity" json:"fist_sensitivity"`
	EscalatedSensitivity float64 `yaml:"escalated_sensitivity" json:"escalated_sensitivity"`
	FocusedSensitivity   float64 `yaml:"focused_sensitivity" json:"focused_sensitivity"`

	PanDeadzone float64 `yaml:"pan_deadzone" json:"pan_deadzone"`
	PanSpeed    float64 `yaml:"pan_speed" json:"pan_speed"`

	EdgeMargin    float64 `yaml:"edge_margin" json:"edge_margin"`
	ReentryFrames int     `yaml:"reentry_frames" json:"reentry_frames"`
	DeltaClamp    float64 `yaml:"delta_clamp" json:"delta_clamp"`

	Damping         float64 `yaml:"damping" json:"damping"`
	StopThreshold   float64 `yaml:"stop_threshold" json:"stop_threshold"`
	RotationEpsilon float64 `yaml:"rotation_epsilon" json:"rotation_epsilon"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		LongPressDuration:    time.Second,
		FistSensitivity:      1.5,
		EscalatedSensitivity: 1.9,
		FocusedSensitivity:   1.5,
		PanDeadzone:          0.35,
		PanSpeed:             0.15,
		EdgeMargin:           0.05,
		ReentryFrames:        3,
		DeltaClamp:           0.03,
		Damping:              0.92,
		StopThreshold:        0.001,
		RotationEpsilon:      1e-4,
	}
}

// Validate reports values the machine cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.LongPressDuration < 0 {
		errs = append(errs, fmt.Errorf("long_press_duration must not be negative"))
	}
	if c.Damping < 0 || c.Damping >= 1 {
		errs = append(errs, fmt.Errorf("damping must be within [0,1), got %v", c.Damping))
	}
	if c.StopThreshold <= 0 {
		errs = append(errs, fmt.Errorf("stop_threshold must be positive, got %v", c.StopThreshold))
	}
	if c.EdgeMargin < 0 || c.EdgeMargin >= 0.5 {
		errs = append(errs, fmt.Errorf("edge_margin must be within [0,0.5), got %v", c.EdgeMargin))
	}
	if c.PanDeadzone < 0 {
		errs = append(errs, fmt.Errorf("pan_deadzone must not be negative"))
	}
	if c.ReentryFrames < 1 {
		errs = append(errs, fmt.Errorf("reentry_frames must be at least 1, got %d", c.ReentryFrames))
	}
	if c.DeltaClamp <= 0 {
		errs = append(errs, fmt.Errorf("delta_clamp must be positive, got %v", c.DeltaClamp))
	}
	return errors.Join(errs...)
}
