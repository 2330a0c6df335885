// Package tray provides a system tray menu showing the live interaction mode
// and gesture, with controls to pause detection and reset the session.
package tray

import (
	"sync"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/getlantern/systray"
)

// Tray is the system tray application. It is an app.Sink.
type Tray struct {
	mu         sync.RWMutex
	onToggle   func(enabled bool)
	onReset    func()
	onSettings func()
	onQuit     func()
	enabled    bool
	mode       interaction.Mode
	gesture    gesture.Gesture

	menuToggle  *systray.MenuItem
	menuMode    *systray.MenuItem
	menuGesture *systray.MenuItem
}

// New creates an enabled Tray showing WHOLE and NONE.
func New() *Tray {
	return &Tray{enabled: true}
}

// OnToggle sets the callback for the enable toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnReset sets the callback for the reset item.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnSettings sets the callback for the viewer item.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback for the quit item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit stops the tray.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra gesture control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume gesture detection")
	systray.AddSeparator()
	t.menuMode = systray.AddMenuItem(modeTitle(t.mode), "Interaction mode")
	t.menuMode.Disable()
	t.menuGesture = systray.AddMenuItem(gestureTitle(t.gesture), "Published gesture")
	t.menuGesture.Disable()
	toggle := t.menuToggle
	t.mu.Unlock()

	systray.AddSeparator()
	menuReset := systray.AddMenuItem("Reset View", "Return to WHOLE and stop rotation")
	menuSettings := systray.AddMenuItem("Open Viewer...", "Open the viewer in a browser")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-toggle.ClickedCh:
				t.Toggle()
			case <-menuReset.ClickedCh:
				t.call(func() func() { return t.onReset })
			case <-menuSettings.ClickedCh:
				t.call(func() func() { return t.onSettings })
			case <-menuQuit.ClickedCh:
				t.call(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

// call runs the callback picked under the read lock, outside of it.
func (t *Tray) call(pick func() func()) {
	t.mu.RLock()
	fn := pick()
	t.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Toggle flips the enabled state and notifies the toggle callback.
func (t *Tray) Toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

// Publish implements app.Sink. Menu titles change only when the mode or
// gesture does.
func (t *Tray) Publish(result app.FrameResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if result.Mode != t.mode {
		t.mode = result.Mode
		if t.menuMode != nil {
			t.menuMode.SetTitle(modeTitle(t.mode))
		}
	}
	if result.Gesture != t.gesture {
		t.gesture = result.Gesture
		if t.menuGesture != nil {
			t.menuGesture.SetTitle(gestureTitle(t.gesture))
		}
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// State returns the mode and gesture on display.
func (t *Tray) State() (interaction.Mode, gesture.Gesture) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mode, t.gesture
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func modeTitle(m interaction.Mode) string {
	return "Mode: " + m.String()
}

func gestureTitle(g gesture.Gesture) string {
	return "Gesture: " + g.String()
}
