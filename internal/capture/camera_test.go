package capture

import (
	"errors"
	"testing"
	"time"
)

func TestNewCamera_Defaults(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantFPS int
	}{
		{"zero config", Config{}, DefaultIdleFPS},
		{"explicit fps", Config{Device: 1, FPS: 12}, 12},
		{"negative fps", Config{Device: 2, FPS: -3}, DefaultIdleFPS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.cfg)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			if cam.IsOpen() {
				t.Error("camera should not be open initially")
			}
		})
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	cam.SetFPS(30)
	cam.SetFPS(0)
	cam.SetFPS(-5)

	if got := cam.FPS(); got != 30 {
		t.Errorf("FPS() = %d, want 30", got)
	}
}

func TestCamera_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera = %v, want nil", err)
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(DefaultConfig())
	if err := cam.Open(); err != nil {
		t.Skipf("camera not available: %v", err)
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should be false after Close()")
	}
}

func TestActivityGate(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	gate := NewActivityGate(DefaultGateConfig())

	steps := []struct {
		name        string
		motion      bool
		at          time.Duration
		wantActive  bool
		wantChanged bool
	}{
		{"idle without motion", false, 0, false, false},
		{"motion activates", true, 100 * time.Millisecond, true, true},
		{"stays active on motion", true, 200 * time.Millisecond, true, false},
		{"stays active within timeout", false, 2 * time.Second, true, false},
		{"falls idle after timeout", false, 2300 * time.Millisecond, false, true},
		{"remains idle", false, 3 * time.Second, false, false},
	}

	for _, s := range steps {
		active, changed := gate.Observe(s.motion, start.Add(s.at))
		if active != s.wantActive || changed != s.wantChanged {
			t.Errorf("%s: got active=%v changed=%v, want %v %v", s.name, active, changed, s.wantActive, s.wantChanged)
		}
	}
}

func TestActivityGate_Interval(t *testing.T) {
	gate := NewActivityGate(GateConfig{IdleFPS: 5, ActiveFPS: 20, IdleTimeout: time.Second})

	if got := gate.Interval(); got != 200*time.Millisecond {
		t.Errorf("idle interval = %v, want 200ms", got)
	}
	gate.Observe(true, time.Now())
	if got := gate.Interval(); got != 50*time.Millisecond {
		t.Errorf("active interval = %v, want 50ms", got)
	}
}
