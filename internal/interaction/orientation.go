package interaction

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an accumulated unit rotation.
type Orientation struct {
	q quat.Number
}

// Identity returns the zero rotation.
func Identity() Orientation {
	return Orientation{q: quat.Number{Real: 1}}
}

// axisAngle returns the unit quaternion rotating by angle about a unit axis.
func axisAngle(x, y, z, angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Imag: x * s, Jmag: y * s, Kmag: z * s}
}

// Rotate composes a yaw (about +Y) then pitch (about +X) step in front of o
// and renormalizes.
func (o *Orientation) Rotate(v DampedAxisPair) {
	if o.q == (quat.Number{}) {
		o.q = quat.Number{Real: 1}
	}
	step := quat.Mul(axisAngle(0, 1, 0, v.Yaw), axisAngle(1, 0, 0, v.Pitch))
	o.q = quat.Mul(step, o.q)
	o.normalize()
}

func (o *Orientation) normalize() {
	n := quat.Abs(o.q)
	if n == 0 || math.IsNaN(n) {
		o.q = quat.Number{Real: 1}
		return
	}
	o.q = quat.Scale(1/n, o.q)
}

// Quaternion returns the rotation as (x, y, z, w).
func (o Orientation) Quaternion() [4]float64 {
	if o.q == (quat.Number{}) {
		return [4]float64{0, 0, 0, 1}
	}
	return [4]float64{o.q.Imag, o.q.Jmag, o.q.Kmag, o.q.Real}
}

// Angle returns the total rotation angle in radians.
func (o Orientation) Angle() float64 {
	w := o.Quaternion()[3]
	return 2 * math.Acos(math.Min(1, math.Abs(w)))
}

// MarshalJSON encodes the orientation as an [x, y, z, w] array.
func (o Orientation) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Quaternion())
}

// UnmarshalJSON decodes an [x, y, z, w] array and renormalizes it.
func (o *Orientation) UnmarshalJSON(data []byte) error {
	var v [4]float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.q = quat.Number{Real: v[3], Imag: v[0], Jmag: v[1], Kmag: v[2]}
	o.normalize()
	return nil
}
