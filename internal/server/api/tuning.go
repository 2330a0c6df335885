package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ayusman/mudra/internal/hook"
)

// TuningHandler serves GET and PUT /api/tuning on the running session.
// PUT accepts a partial tuning document; omitted fields keep their value.
type TuningHandler struct {
	tuner Tuner
}

// NewTuningHandler creates a TuningHandler.
func NewTuningHandler(tuner Tuner) *TuningHandler {
	return &TuningHandler{tuner: tuner}
}

// ServeHTTP implements the http.Handler interface.
func (h *TuningHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.tuner.Tuning())
	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil || !json.Valid(body) {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		tuning, err := decodeTuning(body, h.tuner.Tuning())
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid tuning: "+err.Error())
			return
		}
		h.tuner.Retune(tuning)
		writeJSON(w, http.StatusOK, tuning)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HookHandler lists installed hooks. POST rescans the hook directory.
type HookHandler struct {
	manager *hook.Manager
}

// NewHookHandler creates a HookHandler.
func NewHookHandler(m *hook.Manager) *HookHandler {
	return &HookHandler{manager: m}
}

type listHooksResponse struct {
	Hooks []hook.Manifest `json:"hooks"`
}

// ServeHTTP implements the http.Handler interface.
func (h *HookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if err := h.manager.Discover(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to discover hooks")
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hooks := h.manager.List()
	response := listHooksResponse{Hooks: make([]hook.Manifest, 0, len(hooks))}
	for _, hk := range hooks {
		response.Hooks = append(response.Hooks, hk.Manifest)
	}
	writeJSON(w, http.StatusOK, response)
}
