package interaction

import "math"

// Point is a cursor position in normalized screen space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Center is the middle of the screen.
var Center = Point{X: 0.5, Y: 0.5}

// DampedAxisPair is a two-axis angular velocity in radians per frame.
// Yaw turns about the vertical axis and is driven by horizontal motion;
// Pitch turns about the horizontal axis and is driven by vertical motion.
type DampedAxisPair struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Set replaces both components from a cursor delta scaled by gain.
func (p *DampedAxisPair) Set(delta Point, gain float64) {
	p.Yaw = delta.X * gain
	p.Pitch = delta.Y * gain
}

// Zero stops both axes.
func (p *DampedAxisPair) Zero() {
	p.Yaw, p.Pitch = 0, 0
}

// Damp multiplies both components by factor and snaps either to zero once
// its magnitude drops below stop.
func (p *DampedAxisPair) Damp(factor, stop float64) {
	p.Yaw = damp(p.Yaw, factor, stop)
	p.Pitch = damp(p.Pitch, factor, stop)
}

// Moving reports whether either component exceeds epsilon.
func (p DampedAxisPair) Moving(epsilon float64) bool {
	return math.Abs(p.Yaw) > epsilon || math.Abs(p.Pitch) > epsilon
}

func damp(v, factor, stop float64) float64 {
	v *= factor
	if math.Abs(v) < stop {
		return 0
	}
	return v
}
