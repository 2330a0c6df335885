package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/store"
)

// HookLookup finds an installed hook by name.
type HookLookup interface {
	Get(name string) (*hook.Hook, error)
}

// BindingHandler serves /api/bindings.
type BindingHandler struct {
	store *store.Store
	hooks HookLookup
}

// NewBindingHandler creates a BindingHandler. When hooks is not nil, new and
// updated bindings must name an installed hook that accepts the intent.
func NewBindingHandler(s *store.Store, hooks HookLookup) *BindingHandler {
	return &BindingHandler{store: s, hooks: hooks}
}

// ServeHTTP implements the http.Handler interface.
func (h *BindingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/bindings")

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}
	if len(parts) > 1 {
		http.NotFound(w, r)
		return
	}

	id := parts[0]
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type bindingRequest struct {
	Intent     string          `json:"intent"`
	HookName   string          `json:"hook_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type bindingResponse struct {
	ID         string          `json:"id"`
	Intent     string          `json:"intent"`
	HookName   string          `json:"hook_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listBindingsResponse struct {
	Bindings []bindingResponse `json:"bindings"`
}

func toBindingResponse(b *store.Binding) bindingResponse {
	return bindingResponse{
		ID:         b.ID,
		Intent:     b.Intent.String(),
		HookName:   b.HookName,
		ActionName: b.ActionName,
		Config:     b.Config,
		Enabled:    b.Enabled,
		CreatedAt:  timestamp(b.CreatedAt),
	}
}

func (h *BindingHandler) list(w http.ResponseWriter, r *http.Request) {
	bindings, err := h.store.Bindings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bindings")
		return
	}

	response := listBindingsResponse{Bindings: make([]bindingResponse, 0, len(bindings))}
	for _, b := range bindings {
		response.Bindings = append(response.Bindings, toBindingResponse(b))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *BindingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	b, err := h.store.Bindings().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get binding")
		return
	}
	writeJSON(w, http.StatusOK, toBindingResponse(b))
}

func (h *BindingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req bindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Intent == "" || req.HookName == "" || req.ActionName == "" {
		writeError(w, http.StatusBadRequest, "intent, hook_name and action_name are required")
		return
	}

	b := &store.Binding{
		HookName:   req.HookName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    true,
	}
	if err := b.Intent.UnmarshalText([]byte(req.Intent)); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid intent")
		return
	}
	if req.Enabled != nil {
		b.Enabled = *req.Enabled
	}
	if err := h.checkHook(b); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Bindings().Create(b); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create binding")
		return
	}
	writeJSON(w, http.StatusCreated, toBindingResponse(b))
}

func (h *BindingHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	b, err := h.store.Bindings().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get binding")
		return
	}

	var req bindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Intent != "" {
		var kind interaction.IntentKind
		if err := kind.UnmarshalText([]byte(req.Intent)); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid intent")
			return
		}
		b.Intent = kind
	}
	if req.HookName != "" {
		b.HookName = req.HookName
	}
	if req.ActionName != "" {
		b.ActionName = req.ActionName
	}
	if req.Config != nil {
		b.Config = req.Config
	}
	if req.Enabled != nil {
		b.Enabled = *req.Enabled
	}
	if err := h.checkHook(b); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Bindings().Update(b); err != nil {
		h.storeError(w, err, "Failed to update binding")
		return
	}
	writeJSON(w, http.StatusOK, toBindingResponse(b))
}

func (h *BindingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Bindings().Delete(id); err != nil {
		h.storeError(w, err, "Failed to delete binding")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkHook verifies the bound hook is installed, accepts the intent and
// declares the action.
func (h *BindingHandler) checkHook(b *store.Binding) error {
	if h.hooks == nil {
		return nil
	}
	hk, err := h.hooks.Get(b.HookName)
	if errors.Is(err, hook.ErrHookNotFound) {
		return fmt.Errorf("hook %q is not installed", b.HookName)
	}
	if err != nil {
		return err
	}
	if !hk.Accepts(b.Intent) {
		return fmt.Errorf("hook %q does not accept %s", b.HookName, b.Intent)
	}
	if len(hk.Manifest.Actions) > 0 && !hk.HasAction(b.ActionName) {
		return fmt.Errorf("hook %q has no action %q", b.HookName, b.ActionName)
	}
	return nil
}

func (h *BindingHandler) storeError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Binding not found")
		return
	}
	writeError(w, http.StatusInternalServerError, message)
}
