package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/store"
)

// ProfileHandler serves /api/profiles.
//
//	GET    /api/profiles
//	POST   /api/profiles
//	GET    /api/profiles/{id}
//	PUT    /api/profiles/{id}
//	DELETE /api/profiles/{id}
//	POST   /api/profiles/{id}/activate
type ProfileHandler struct {
	store *store.Store
	tuner Tuner
}

// NewProfileHandler creates a ProfileHandler. Activating a profile retunes
// tuner when it is not nil.
func NewProfileHandler(s *store.Store, tuner Tuner) *ProfileHandler {
	return &ProfileHandler{store: s, tuner: tuner}
}

// ServeHTTP implements the http.Handler interface.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path, "/api/profiles")

	switch {
	case len(parts) == 0:
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case len(parts) == 1:
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
	case len(parts) == 2 && parts[1] == "activate":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.activate(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

type profileRequest struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Tuning      json.RawMessage `json:"tuning"`
}

type profileResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Tuning      app.Tuning `json:"tuning"`
	Active      bool       `json:"active"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

func toProfileResponse(p *store.Profile, activeID string) profileResponse {
	return profileResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Tuning:      p.Tuning,
		Active:      p.ID == activeID,
		CreatedAt:   timestamp(p.CreatedAt),
		UpdatedAt:   timestamp(p.UpdatedAt),
	}
}

func (h *ProfileHandler) activeID() string {
	id, _ := h.store.Settings().Get(store.ActiveProfileKey)
	return id
}

func (h *ProfileHandler) baseTuning() app.Tuning {
	if h.tuner != nil {
		return h.tuner.Tuning()
	}
	return app.DefaultTuning()
}

func (h *ProfileHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	active := h.activeID()
	response := listProfilesResponse{Profiles: make([]profileResponse, 0, len(profiles))}
	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toProfileResponse(p, active))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Profiles().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get profile")
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p, h.activeID()))
}

// create stores a new profile. Omitted tuning fields take the running
// session's values.
func (h *ProfileHandler) create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	tuning, err := decodeTuning(req.Tuning, h.baseTuning())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tuning: "+err.Error())
		return
	}

	p := &store.Profile{Name: req.Name, Tuning: tuning}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if err := h.store.Profiles().Create(p); err != nil {
		h.storeError(w, err, "Failed to create profile")
		return
	}
	writeJSON(w, http.StatusCreated, toProfileResponse(p, h.activeID()))
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	p, err := h.store.Profiles().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get profile")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if p.Tuning, err = decodeTuning(req.Tuning, p.Tuning); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tuning: "+err.Error())
		return
	}

	if err := h.store.Profiles().Update(p); err != nil {
		h.storeError(w, err, "Failed to update profile")
		return
	}

	active := h.activeID()
	if p.ID == active && h.tuner != nil {
		h.tuner.Retune(p.Tuning)
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p, active))
}

func (h *ProfileHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Profiles().Delete(id); err != nil {
		h.storeError(w, err, "Failed to delete profile")
		return
	}
	if h.activeID() == id {
		h.store.Settings().Delete(store.ActiveProfileKey)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) activate(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.SetActiveProfile(id); err != nil {
		h.storeError(w, err, "Failed to activate profile")
		return
	}
	p, err := h.store.Profiles().GetByID(id)
	if err != nil {
		h.storeError(w, err, "Failed to get profile")
		return
	}
	if h.tuner != nil {
		h.tuner.Retune(p.Tuning)
	}
	writeJSON(w, http.StatusOK, toProfileResponse(p, id))
}

func (h *ProfileHandler) storeError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Profile not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "Profile name already exists")
	default:
		writeError(w, http.StatusInternalServerError, message)
	}
}
