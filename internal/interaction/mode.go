// Package interaction implements the three-mode interaction state machine
// that turns published gestures and cursor motion into rotation momentum,
// pan vectors and discrete intents for a 3D renderer.
package interaction

import "fmt"

// Mode is the current interaction phase.
type Mode uint8

const (
	// Whole rotates the assembled model.
	Whole Mode = iota
	// Scattered shows the exploded parts and allows picking.
	Scattered
	// Focused isolates one picked part.
	Focused
)

var modeNames = [...]string{
	Whole:     "WHOLE",
	Scattered: "SCATTERED",
	Focused:   "FOCUSED",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// Valid reports whether m is a defined mode.
func (m Mode) Valid() bool {
	return int(m) < len(modeNames)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid mode %d", m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode converts a wire name into a Mode.
func ParseMode(s string) (Mode, error) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), nil
		}
	}
	return Whole, fmt.Errorf("unknown mode %q", s)
}
