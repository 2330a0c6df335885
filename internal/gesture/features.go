package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/landmark"
)

// minHandScale keeps pinch ratios finite when wrist and index base coincide.
const minHandScale = 1e-6

// Frame is one hand pose in unit-cube coordinates.
type Frame = [landmark.NumLandmarks]landmark.Point3D

// fingers lists the (tip, base) landmark pairs of the four non-thumb fingers.
var fingers = [4][2]int{
	{landmark.IndexTip, landmark.IndexMCP},
	{landmark.MiddleTip, landmark.MiddleMCP},
	{landmark.RingTip, landmark.RingMCP},
	{landmark.PinkyTip, landmark.PinkyMCP},
}

// Features are the geometric measurements the classifier decides on.
type Features struct {
	PinchDistance float64
	HandScale     float64
	PinchRatio    float64
	// Extension is distance(tip, wrist) - distance(base, wrist) per finger.
	// Positive means extended away from the palm.
	Extension [4]float64
	// VerticalGap is tip.y - base.y per finger. Negative means the tip is above the base.
	VerticalGap [4]float64
	// ThumbSpan is distance(thumb tip, thumb MCP).
	ThumbSpan float64
}

// ExtractFeatures measures a frame. Coordinates are clamped to [0,1] first so
// a malformed point cannot produce NaN.
func ExtractFeatures(f *Frame) Features {
	var p Frame
	for i, pt := range f {
		p[i] = landmark.Point3D{
			X: landmark.Clamp01(pt.X),
			Y: landmark.Clamp01(pt.Y),
			Z: landmark.Clamp01(pt.Z),
		}
	}

	wrist := p[landmark.Wrist]
	feat := Features{
		PinchDistance: landmark.Distance(p[landmark.ThumbTip], p[landmark.IndexTip]),
		HandScale:     math.Max(landmark.Distance(wrist, p[landmark.IndexMCP]), minHandScale),
		ThumbSpan:     landmark.Distance(p[landmark.ThumbTip], p[landmark.ThumbMCP]),
	}
	feat.PinchRatio = feat.PinchDistance / feat.HandScale

	for i, fg := range fingers {
		tip, base := p[fg[0]], p[fg[1]]
		feat.Extension[i] = landmark.Distance(tip, wrist) - landmark.Distance(base, wrist)
		feat.VerticalGap[i] = tip.Y - base.Y
	}
	return feat
}

// countExtended counts fingers whose extension exceeds threshold.
func (f Features) countExtended(threshold float64) int {
	n := 0
	for _, d := range f.Extension {
		if d > threshold {
			n++
		}
	}
	return n
}

// countCurled counts fingers whose extension is below threshold.
func (f Features) countCurled(threshold float64) int {
	n := 0
	for _, d := range f.Extension {
		if d < threshold {
			n++
		}
	}
	return n
}

// countRaised counts fingers whose tip sits above the base by more than -threshold.
func (f Features) countRaised(threshold float64) int {
	n := 0
	for _, g := range f.VerticalGap {
		if g < threshold {
			n++
		}
	}
	return n
}

// countLevel counts fingers whose tip is within threshold of the base height.
func (f Features) countLevel(threshold float64) int {
	n := 0
	for _, g := range f.VerticalGap {
		if math.Abs(g) < threshold {
			n++
		}
	}
	return n
}
