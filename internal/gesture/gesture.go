// Package gesture turns a stream of hand landmark frames into debounced
// discrete gestures: adaptive smoothing, hysteresis classification and
// temporal stabilization.
package gesture

import "fmt"

// Gesture is one of the four recognised hand poses.
type Gesture uint8

const (
	// None means no confident pose, or no hand at all.
	None Gesture = iota
	// Open is a flat palm with all fingers and the thumb extended.
	Open
	// Fist is a closed hand with every finger curled.
	Fist
	// Pinch is thumb and index tips touching.
	Pinch
)

var gestureNames = [...]string{
	None:  "NONE",
	Open:  "OPEN",
	Fist:  "FIST",
	Pinch: "PINCH",
}

// String returns the upper-case wire name of g.
func (g Gesture) String() string {
	if int(g) < len(gestureNames) {
		return gestureNames[g]
	}
	return fmt.Sprintf("Gesture(%d)", g)
}

// Valid reports whether g is one of the four defined gestures.
func (g Gesture) Valid() bool {
	return int(g) < len(gestureNames)
}

// Critical reports whether leaving g towards Open needs extra confirmation.
func (g Gesture) Critical() bool {
	return g == Fist || g == Pinch
}

// MarshalText implements encoding.TextMarshaler.
func (g Gesture) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid gesture %d", g)
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Gesture) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Parse converts a wire name back into a Gesture. "CLOSED" is accepted as
// an alias for FIST, as some trackers emit it.
func Parse(s string) (Gesture, error) {
	switch s {
	case "NONE", "":
		return None, nil
	case "OPEN":
		return Open, nil
	case "FIST", "CLOSED":
		return Fist, nil
	case "PINCH":
		return Pinch, nil
	}
	return None, fmt.Errorf("unknown gesture %q", s)
}
