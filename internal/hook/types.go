// Package hook discovers external executables and runs them when the
// interaction machine emits intents.
package hook

import (
	"encoding/json"
	"slices"

	"github.com/ayusman/mudra/internal/interaction"
)

// ManifestFile is the manifest name inside each hook directory.
const ManifestFile = "hook.json"

// Manifest describes a hook's metadata and capabilities.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
	// Intents limits which intent kinds the hook may be bound to. Empty means any.
	Intents      []interaction.IntentKind `json:"intents,omitempty"`
	ConfigSchema json.RawMessage          `json:"configSchema,omitempty"`
}

// Request is written to the hook's stdin as JSON.
type Request struct {
	Action   string             `json:"action"`
	Intent   interaction.Intent `json:"intent"`
	Mode     interaction.Mode   `json:"mode"`
	Sequence uint64             `json:"seq"`
	Config   json.RawMessage    `json:"config"`
}

// Response is read from the hook's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Accepts reports whether the hook may run for kind.
func (h *Hook) Accepts(kind interaction.IntentKind) bool {
	return len(h.Manifest.Intents) == 0 || slices.Contains(h.Manifest.Intents, kind)
}

// HasAction reports whether the manifest declares action.
func (h *Hook) HasAction(action string) bool {
	return slices.Contains(h.Manifest.Actions, action)
}
