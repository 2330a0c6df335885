// Package landmark holds the 21-point hand model shared by the detectors and
// the gesture core, with preset poses for tests and demos.
package landmark

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// ErrMalformedFrame is returned when a landmark slice does not hold exactly NumLandmarks points.
var ErrMalformedFrame = errors.New("malformed landmark frame")

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is the 21 landmarks of one tracked hand.
type Hand struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Distance calculates the Euclidean distance between two 3D points.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Clamp01 limits v to [0, 1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// CenterPoint is the landmark value used when no hand is tracked.
var CenterPoint = Point3D{X: 0.5, Y: 0.5, Z: 0}

// Centered returns a frame with every point at CenterPoint.
func Centered() [NumLandmarks]Point3D {
	var pts [NumLandmarks]Point3D
	for i := range pts {
		pts[i] = CenterPoint
	}
	return pts
}

// FromPoints copies a tracker-supplied slice into a Hand.
// The slice is not retained.
func FromPoints(points []Point3D, score float64) (Hand, error) {
	if len(points) != NumLandmarks {
		return Hand{}, fmt.Errorf("%w: got %d points, want %d", ErrMalformedFrame, len(points), NumLandmarks)
	}
	h := Hand{Score: score}
	copy(h.Points[:], points)
	return h, nil
}

// Sanitize maps raw tracker output into the unit cube.
// X and Y are clamped, Z is re-centred from MediaPipe's wrist-relative depth
// and clamped, and Y is mirrored when flipY is set.
func (h *Hand) Sanitize(flipY bool) [NumLandmarks]Point3D {
	var out [NumLandmarks]Point3D
	if h == nil {
		return Centered()
	}
	for i, p := range h.Points {
		y := Clamp01(p.Y)
		if flipY {
			y = Clamp01(1 - p.Y)
		}
		out[i] = Point3D{
			X: Clamp01(p.X),
			Y: y,
			Z: Clamp01(p.Z + 0.5),
		}
	}
	return out
}
