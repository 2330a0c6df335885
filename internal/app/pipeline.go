package app

import (
	"context"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
)

// run is the capture loop.
//
// It starts idle, reading frames at the idle rate and checking only for
// motion. Motion switches to the active rate and every frame goes through
// the detector into the session. After IdleTimeout without motion the loop
// falls back to idle and reports tracking loss once.
func (a *App) run(ctx context.Context, gate *capture.ActivityGate) {
	defer close(a.done)

	ticker := time.NewTicker(gate.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			if a.step(gate, now) {
				a.Camera().SetFPS(gate.FPS())
				ticker.Reset(gate.Interval())
			}
		}
	}
}

// step handles one tick and reports whether the gate changed state.
func (a *App) step(gate *capture.ActivityGate, now time.Time) bool {
	frame, err := a.Camera().ReadFrame()
	if err != nil {
		a.logger.Warn("reading frame", "error", err)
		return false
	}
	defer frame.Close()

	moved, pct := a.motion.Detect(frame)
	active, changed := gate.Observe(moved, now)
	if changed {
		a.logger.Debug("activity changed", "active", active, "motion_pct", pct)
		if !active {
			a.session.Lost(now)
		}
	}
	if !active {
		return changed
	}

	d := a.Detector()
	if d == nil {
		return changed
	}
	hands, err := d.Detect(frame)
	if err != nil {
		a.logger.Warn("detecting hands", "error", err)
		return changed
	}

	result := a.session.Process(detector.Primary(hands), now)

	a.mu.RLock()
	observer := a.observer
	a.mu.RUnlock()
	if observer != nil {
		observer(frame, result)
	}
	return changed
}
