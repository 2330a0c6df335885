// Package detector finds hands in camera frames.
package detector

import (
	"github.com/ayusman/mudra/internal/landmark"
	"gocv.io/x/gocv"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]landmark.Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect. Only the first hand
	// drives the interaction core.
	MaxHands int `yaml:"max_hands" json:"max_hands"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	// It doubles as the reported confidence when the tracker omits a score.
	MinConfidence float64 `yaml:"min_confidence" json:"min_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `yaml:"min_tracking_confidence" json:"min_tracking_confidence"`

	// ModelComplexity selects the MediaPipe hand model (0 or 1).
	ModelComplexity int `yaml:"model_complexity" json:"model_complexity"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.6,
		MinTrackingConf: 0.6,
		ModelComplexity: 1,
	}
}

// Primary returns the first detected hand, or nil when none was found.
func Primary(hands []landmark.Hand) *landmark.Hand {
	if len(hands) == 0 {
		return nil
	}
	return &hands[0]
}
