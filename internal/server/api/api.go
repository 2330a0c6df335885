// Package api provides the REST handlers for profiles, bindings, hooks and
// live tuning.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/app"
)

// Tuner reads and replaces the running session parameters.
type Tuner interface {
	Tuning() app.Tuning
	Retune(app.Tuning)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// splitPath returns the path segments after prefix.
func splitPath(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// decodeTuning overlays raw onto base. A nil raw leaves base unchanged.
func decodeTuning(raw json.RawMessage, base app.Tuning) (app.Tuning, error) {
	if len(raw) == 0 {
		return base, nil
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		return base, err
	}
	return base, base.Validate()
}
