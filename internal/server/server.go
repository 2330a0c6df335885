// Package server provides the HTTP surface of a gesture session: REST
// administration, the renderer websocket, the live broadcast, the camera
// preview and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Session   *app.Session
	Hooks     *hook.Manager
	Metrics   *metrics.Metrics
	// Preview enables /api/stream. It is fed by the local camera loop.
	Preview *Preview
	Logger  *slog.Logger
}

// Server is the HTTP server for a mudra session.
type Server struct {
	config Config
	mux    *http.ServeMux
	hub    *Hub
	start  time.Time
	logger *slog.Logger
}

// New creates a Server. When a session is configured its results are
// broadcast on /api/live.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		logger: logger,
	}
	if config.Session != nil {
		s.hub = NewHub(config.Metrics, logger)
		config.Session.AddSink(s.hub)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		var tuner api.Tuner
		if s.config.Session != nil {
			tuner = s.config.Session
		}
		profiles := api.NewProfileHandler(s.config.Store, tuner)
		s.mux.Handle("/api/profiles", profiles)
		s.mux.Handle("/api/profiles/", profiles)

		var lookup api.HookLookup
		if s.config.Hooks != nil {
			lookup = s.config.Hooks
		}
		bindings := api.NewBindingHandler(s.config.Store, lookup)
		s.mux.Handle("/api/bindings", bindings)
		s.mux.Handle("/api/bindings/", bindings)
	}

	if s.config.Hooks != nil {
		s.mux.Handle("/api/hooks", api.NewHookHandler(s.config.Hooks))
	}

	if s.config.Session != nil {
		s.mux.Handle("/api/tuning", api.NewTuningHandler(s.config.Session))
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.Handle("/api/session", NewSessionHandler(s.config.Session, s.logger))
		s.mux.Handle("/api/live", s.hub)
	}

	if s.config.Preview != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Preview))
	}

	s.mux.Handle("/metrics", s.config.Metrics.Handler())

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Hub returns the live broadcast hub, or nil without a session.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Session != nil {
		response["mode"] = s.config.Session.Last().Mode
	}
	if s.hub != nil {
		response["live_clients"] = s.hub.Len()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// handleState returns the most recent frame result.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.config.Session.Last()); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if s.hub != nil {
		s.hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
