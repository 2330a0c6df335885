// Package app wires the gesture pipeline and interaction machine to their
// inputs (local camera, websocket feed) and outputs (sinks).
package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"gocv.io/x/gocv"
)

// Config holds the local camera feed settings.
type Config struct {
	Camera   capture.Config
	Gate     capture.GateConfig
	Detector detector.Config
}

// FrameObserver receives each captured camera frame before detection, for
// previews. It must not retain the Mat.
type FrameObserver func(frame *gocv.Mat, result FrameResult)

// App drives a Session from a local camera and hand detector.
type App struct {
	config   Config
	session  *Session
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	logger   *slog.Logger

	mu       sync.RWMutex
	enabled  bool
	cancel   context.CancelFunc
	done     chan struct{}
	observer FrameObserver
}

// New creates an App feeding session. It prefers the MediaPipe detector
// and falls back to the mock detector when the service is not installed.
func New(config Config, session *Session, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		config:  config,
		session: session,
		camera:  capture.NewCamera(config.Camera),
		motion:  capture.NewMotionDetector(config.Gate.MotionThreshold),
		logger:  logger,
		enabled: true,
	}

	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		logger.Info("using MediaPipe hand detection")
	} else {
		logger.Warn("MediaPipe not available, using mock detector", "error", err)
		a.detector = detector.NewMockDetector()
	}
	return a
}

// SetEnabled pauses or resumes detection. Pausing reports tracking loss.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	was := a.enabled
	a.enabled = enabled
	a.mu.Unlock()

	if was && !enabled {
		a.session.Reset()
	}
	a.logger.Info("detection toggled", "enabled", enabled)
}

// IsEnabled reports whether detection is running.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector swaps the hand detector.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera swaps the frame source. Call before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetFrameObserver registers a preview hook for captured frames.
func (a *App) SetFrameObserver(fn FrameObserver) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observer = fn
}

// Start opens the camera and runs the capture loop until ctx is done or Stop
// is called.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}
	if err := a.camera.Open(); err != nil {
		return err
	}

	gate := capture.NewActivityGate(a.config.Gate)
	a.camera.SetFPS(gate.FPS())

	ctx, a.cancel = context.WithCancel(ctx)
	a.done = make(chan struct{})
	go a.run(ctx, gate)

	a.logger.Info("capture loop started", "device", a.config.Camera.Device)
	return nil
}

// Stop halts the capture loop and releases camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	if err := a.camera.Close(); err != nil {
		a.logger.Error("closing camera", "error", err)
	}
	a.motion.Close()
	if d := a.Detector(); d != nil {
		if err := d.Close(); err != nil {
			a.logger.Error("closing detector", "error", err)
		}
	}
	a.logger.Info("capture loop stopped")
}

// Session returns the driven session.
func (a *App) Session() *Session {
	return a.session
}

// Camera returns the frame source.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
