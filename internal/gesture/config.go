package gesture

import (
	"errors"
	"fmt"
)

// Threshold is a hysteresis pair: Enter applies when the candidate gesture is
// not yet published, Exit once it is.
type Threshold struct {
	Enter float64 `yaml:"enter" json:"enter"`
	Exit  float64 `yaml:"exit" json:"exit"`
}

// pick returns Exit when sticky, Enter otherwise.
func (t Threshold) pick(sticky bool) float64 {
	if sticky {
		return t.Exit
	}
	return t.Enter
}

// Count is a hysteresis pair of required finger counts.
type Count struct {
	Enter int `yaml:"enter" json:"enter"`
	Exit  int `yaml:"exit" json:"exit"`
}

func (c Count) pick(sticky bool) int {
	if sticky {
		return c.Exit
	}
	return c.Enter
}

// SmootherConfig tunes the adaptive exponential filter.
type SmootherConfig struct {
	// Adaptive derives alpha from index fingertip speed. When false, Alpha is used as-is.
	Adaptive bool    `yaml:"adaptive" json:"adaptive"`
	Alpha    float64 `yaml:"alpha" json:"alpha"`
	MinAlpha float64 `yaml:"min_alpha" json:"min_alpha"`
	MaxAlpha float64 `yaml:"max_alpha" json:"max_alpha"`
	// VelocityLow and VelocityHigh bound the per-frame fingertip travel mapped onto [MinAlpha, MaxAlpha].
	VelocityLow  float64 `yaml:"velocity_low" json:"velocity_low"`
	VelocityHigh float64 `yaml:"velocity_high" json:"velocity_high"`
}

// ClassifierConfig holds every classifier threshold.
type ClassifierConfig struct {
	ScaleInvariantPinch bool    `yaml:"scale_invariant_pinch" json:"scale_invariant_pinch"`
	PinchRatioThreshold float64 `yaml:"pinch_ratio_threshold" json:"pinch_ratio_threshold"`
	PinchThreshold      float64 `yaml:"pinch_threshold" json:"pinch_threshold"`
	// PinchBaselineCount is how many fingers must already look open before a
	// pinch is accepted from a non-open state.
	PinchBaselineCount int `yaml:"pinch_baseline_count" json:"pinch_baseline_count"`

	OpenExtension   Threshold `yaml:"open_extension" json:"open_extension"`
	OpenVerticalGap Threshold `yaml:"open_vertical_gap" json:"open_vertical_gap"`
	FistCurl        Threshold `yaml:"fist_curl" json:"fist_curl"`
	FistVerticalGap Threshold `yaml:"fist_vertical_gap" json:"fist_vertical_gap"`
	ThumbExtended   Threshold `yaml:"thumb_extended" json:"thumb_extended"`
	ThumbCurled     Threshold `yaml:"thumb_curled" json:"thumb_curled"`
	OpenFingerCount Count     `yaml:"open_finger_count" json:"open_finger_count"`
	FistFingerCount Count     `yaml:"fist_finger_count" json:"fist_finger_count"`

	// OpenMinStrictCount and FistMinStrictCount require that many fingers to
	// pass the Enter threshold even while the state is sticky.
	OpenMinStrictCount int `yaml:"open_min_strict_count" json:"open_min_strict_count"`
	FistMinStrictCount int `yaml:"fist_min_strict_count" json:"fist_min_strict_count"`
}

// StabilizerConfig tunes the temporal stabilizer.
type StabilizerConfig struct {
	OpenConfirmFrames int `yaml:"open_confirm_frames" json:"open_confirm_frames"`
	VoteWindow        int `yaml:"vote_window" json:"vote_window"`
	HoldFrames        int `yaml:"hold_frames" json:"hold_frames"`
}

// Config groups the whole signal pipeline configuration.
type Config struct {
	FlipY      bool             `yaml:"flip_y" json:"flip_y"`
	Smoother   SmootherConfig   `yaml:"smoother" json:"smoother"`
	Classifier ClassifierConfig `yaml:"classifier" json:"classifier"`
	Stabilizer StabilizerConfig `yaml:"stabilizer" json:"stabilizer"`
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		Smoother: SmootherConfig{
			Adaptive:     true,
			Alpha:        0.2,
			MinAlpha:     0.16,
			MaxAlpha:     0.5,
			VelocityLow:  0.003,
			VelocityHigh: 0.03,
		},
		Classifier: ClassifierConfig{
			ScaleInvariantPinch: true,
			PinchRatioThreshold: 0.34,
			PinchThreshold:      0.055,
			PinchBaselineCount:  2,
			OpenExtension:       Threshold{Enter: 0.035, Exit: 0.02},
			OpenVerticalGap:     Threshold{Enter: -0.065, Exit: -0.045},
			FistCurl:            Threshold{Enter: -0.01, Exit: -0.004},
			FistVerticalGap:     Threshold{Enter: 0.065, Exit: 0.08},
			ThumbExtended:       Threshold{Enter: 0.05, Exit: 0.04},
			ThumbCurled:         Threshold{Enter: 0.065, Exit: 0.075},
			OpenFingerCount:     Count{Enter: 4, Exit: 3},
			FistFingerCount:     Count{Enter: 4, Exit: 3},
			OpenMinStrictCount:  3,
			FistMinStrictCount:  2,
		},
		Stabilizer: StabilizerConfig{
			OpenConfirmFrames: 2,
			VoteWindow:        5,
			HoldFrames:        1,
		},
	}
}

// Validate reports configuration values the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	s := c.Smoother
	if s.Alpha < 0 || s.Alpha > 1 || s.MinAlpha < 0 || s.MaxAlpha > 1 || s.MinAlpha > s.MaxAlpha {
		errs = append(errs, fmt.Errorf("smoother alphas must satisfy 0 <= min <= max <= 1"))
	}
	if s.VelocityHigh < s.VelocityLow {
		errs = append(errs, fmt.Errorf("smoother velocity_high %v below velocity_low %v", s.VelocityHigh, s.VelocityLow))
	}
	for name, cnt := range map[string]Count{
		"open_finger_count": c.Classifier.OpenFingerCount,
		"fist_finger_count": c.Classifier.FistFingerCount,
	} {
		if cnt.Enter < 0 || cnt.Enter > 4 || cnt.Exit < 0 || cnt.Exit > 4 {
			errs = append(errs, fmt.Errorf("%s must be within [0,4]", name))
		}
	}
	st := c.Stabilizer
	if st.VoteWindow < 1 {
		errs = append(errs, fmt.Errorf("vote_window must be at least 1, got %d", st.VoteWindow))
	}
	if st.HoldFrames < 1 {
		errs = append(errs, fmt.Errorf("hold_frames must be at least 1, got %d", st.HoldFrames))
	}
	if st.OpenConfirmFrames < 0 {
		errs = append(errs, fmt.Errorf("open_confirm_frames must not be negative"))
	}
	return errors.Join(errs...)
}
