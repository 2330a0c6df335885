package interaction

import (
	"encoding/json"
	"fmt"
)

// IntentKind identifies a discrete action the renderer should perform.
type IntentKind uint8

const (
	// Explode spreads the model into its parts.
	Explode IntentKind = iota + 1
	// Implode recombines the parts.
	Implode
	// Focus isolates the selected part.
	Focus
	// Raycast picks the part under the cursor. X and Y carry NDC coordinates.
	Raycast
	// ResetFocus returns the focused part and camera to the scattered view.
	ResetFocus
)

var intentNames = map[IntentKind]string{
	Explode:    "EXPLODE",
	Implode:    "IMPLODE",
	Focus:      "FOCUS",
	Raycast:    "RAYCAST",
	ResetFocus: "RESET_FOCUS",
}

func (k IntentKind) String() string {
	if name, ok := intentNames[k]; ok {
		return name
	}
	return fmt.Sprintf("IntentKind(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k IntentKind) MarshalText() ([]byte, error) {
	name, ok := intentNames[k]
	if !ok {
		return nil, fmt.Errorf("invalid intent kind %d", k)
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *IntentKind) UnmarshalText(text []byte) error {
	for kind, name := range intentNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown intent kind %q", text)
}

// Kinds lists every intent kind in declaration order.
func Kinds() []IntentKind {
	return []IntentKind{Explode, Implode, Focus, Raycast, ResetFocus}
}

// Intent is one edge-triggered action emitted by Machine.Update.
type Intent struct {
	Kind IntentKind `json:"kind"`
	// X and Y are normalized device coordinates, set for Raycast only.
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON writes the coordinates for Raycast only, including a centred
// ray at 0,0.
func (i Intent) MarshalJSON() ([]byte, error) {
	if i.Kind == Raycast {
		type raycast Intent
		return json.Marshal(raycast(i))
	}
	return json.Marshal(struct {
		Kind IntentKind `json:"kind"`
	}{i.Kind})
}

// RaycastAt builds a Raycast intent for a cursor in [0,1]², y growing down.
func RaycastAt(cursor Point) Intent {
	return Intent{
		Kind: Raycast,
		X:    cursor.X*2 - 1,
		Y:    1 - cursor.Y*2,
	}
}

func (i Intent) String() string {
	if i.Kind == Raycast {
		return fmt.Sprintf("%s(%.3f,%.3f)", i.Kind, i.X, i.Y)
	}
	return i.Kind.String()
}
