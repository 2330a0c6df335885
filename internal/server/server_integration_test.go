package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/store"
)

func TestAPI_ProfileWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	session := app.NewSession(app.DefaultTuning())
	ts := httptest.NewServer(New(Config{Store: s, Session: session}))
	defer ts.Close()
	client := ts.Client()

	// 1. Create a profile with a narrower vote window
	createBody := `{"name":"demo","tuning":{"gesture":{"stabilizer":{"vote_window":3}}}}`
	resp, err := client.Post(ts.URL+"/api/profiles", "application/json", bytes.NewBufferString(createBody))
	if err != nil {
		t.Fatalf("POST /api/profiles error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var created struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if session.Tuning().Gesture.Stabilizer.VoteWindow != 5 {
		t.Fatal("creating a profile must not retune the session")
	}

	// 2. Activate it
	resp, err = client.Post(ts.URL+"/api/profiles/"+created.ID+"/activate", "application/json", nil)
	if err != nil {
		t.Fatalf("POST activate error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("activate status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := session.Tuning().Gesture.Stabilizer.VoteWindow; got != 3 {
		t.Errorf("session vote window = %d, want 3", got)
	}

	active, err := s.ActiveProfile()
	if err != nil || active.ID != created.ID {
		t.Errorf("ActiveProfile() = %v, %v", active, err)
	}

	// 3. The tuning endpoint reflects the active profile
	resp, _ = client.Get(ts.URL + "/api/tuning")
	var tuning app.Tuning
	json.NewDecoder(resp.Body).Decode(&tuning)
	resp.Body.Close()
	if tuning.Gesture.Stabilizer.VoteWindow != 3 {
		t.Errorf("GET /api/tuning vote window = %d, want 3", tuning.Gesture.Stabilizer.VoteWindow)
	}
}

func TestAPI_BindingWorkflow(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	hookDir := t.TempDir()
	os.MkdirAll(filepath.Join(hookDir, "notify"), 0755)
	os.WriteFile(filepath.Join(hookDir, "notify", hook.ManifestFile),
		[]byte(`{"name":"notify","executable":"notify","actions":["show"]}`), 0644)
	hooks := hook.NewManager(hookDir, nil)
	if err := hooks.Discover(); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	ts := httptest.NewServer(New(Config{Store: s, Hooks: hooks}))
	defer ts.Close()
	client := ts.Client()

	resp, err := client.Get(ts.URL + "/api/hooks")
	if err != nil {
		t.Fatalf("GET /api/hooks error = %v", err)
	}
	var listed struct {
		Hooks []hook.Manifest `json:"hooks"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()
	if len(listed.Hooks) != 1 || listed.Hooks[0].Name != "notify" {
		t.Fatalf("unexpected hooks %+v", listed.Hooks)
	}

	body := `{"intent":"FOCUS","hook_name":"notify","action_name":"show"}`
	resp, err = client.Post(ts.URL+"/api/bindings", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("POST /api/bindings error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	resp, _ = client.Get(ts.URL + "/api/bindings")
	var bindings struct {
		Bindings []struct {
			Intent   string `json:"intent"`
			HookName string `json:"hook_name"`
		} `json:"bindings"`
	}
	json.NewDecoder(resp.Body).Decode(&bindings)
	resp.Body.Close()
	if len(bindings.Bindings) != 1 || bindings.Bindings[0].Intent != "FOCUS" {
		t.Errorf("unexpected bindings %+v", bindings.Bindings)
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	ts := httptest.NewServer(New(Config{}))
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
	}
	json.NewDecoder(resp.Body).Decode(&health)
	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}
