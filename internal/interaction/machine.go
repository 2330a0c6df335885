package interaction

import (
	"math"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/landmark"
)

// Input is one frame of state machine input.
type Input struct {
	Gesture gesture.Gesture
	// Cursor is the raw index fingertip in camera space. Update mirrors it.
	Cursor Point
	Now    time.Time
}

// Pan is an edge-pan request: a unit direction and how far past the
// deadzone the cursor sits.
type Pan struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Intensity float64 `json:"intensity"`
}

// Output is the per-frame result of Update.
type Output struct {
	Mode      Mode            `json:"mode"`
	Cursor    Point           `json:"cursor"`
	Pan       *Pan            `json:"pan,omitempty"`
	Effective gesture.Gesture `json:"effective_gesture"`
	Intents   []Intent        `json:"intents,omitempty"`
}

// Machine is the interaction state machine. It is not safe for concurrent
// use; call Update then ApplyMomentum once per frame.
type Machine struct {
	cfg  Config
	mode Mode

	global     DampedAxisPair
	local      DampedAxisPair
	globalQuat Orientation
	localQuat  Orientation

	anchor   Point
	dragging bool
	guard    EdgeGuard

	pinchFired      bool
	fistActionFired bool
	openFired       bool

	fistHoldStart  time.Time
	wholePinchMode bool

	selected bool
}

// NewMachine creates a machine in WHOLE mode.
func NewMachine(cfg Config) *Machine {
	return &Machine{
		cfg:        cfg,
		mode:       Whole,
		globalQuat: Identity(),
		localQuat:  Identity(),
		anchor:     Center,
		guard:      NewEdgeGuard(cfg.EdgeMargin, cfg.ReentryFrames, cfg.DeltaClamp),
	}
}

// Update advances the machine by one frame.
func (m *Machine) Update(in Input) Output {
	cursor := Point{
		X: landmark.Clamp01(1 - in.Cursor.X),
		Y: landmark.Clamp01(in.Cursor.Y),
	}

	var intents []Intent
	emit := func(i Intent) { intents = append(intents, i) }
	edgePan := false

	switch in.Gesture {
	case gesture.Fist:
		m.onFist(cursor, in.Now, emit)
	case gesture.Open:
		edgePan = m.onOpen(emit)
	case gesture.Pinch:
		m.onPinch(cursor, emit)
	default:
		m.releaseAll()
		edgePan = m.mode == Scattered
	}

	out := Output{
		Mode:      m.mode,
		Cursor:    cursor,
		Effective: in.Gesture,
		Intents:   intents,
	}
	if edgePan {
		out.Pan = m.edgePan(cursor)
	}
	if m.mode == Whole && m.wholePinchMode && in.Gesture == gesture.Fist {
		out.Effective = gesture.Pinch
	}
	return out
}

func (m *Machine) onFist(cursor Point, now time.Time, emit func(Intent)) {
	m.pinchFired = false
	m.openFired = false

	if m.mode == Whole {
		if m.fistHoldStart.IsZero() {
			m.fistHoldStart = now
		}
		if now.Sub(m.fistHoldStart) >= m.cfg.LongPressDuration {
			m.wholePinchMode = true
		}
	} else {
		m.fistHoldStart = time.Time{}
		m.wholePinchMode = false
	}

	if !m.fistActionFired {
		m.fistActionFired = true
		switch m.mode {
		case Focused:
			emit(Intent{Kind: ResetFocus})
			m.mode = Scattered
			m.dragging = false
			m.selected = false
		case Scattered:
			emit(Intent{Kind: Implode})
			m.mode = Whole
			m.dragging = false
			m.selected = false
		case Whole:
			m.anchor = cursor
			m.dragging = true
			m.global.Zero()
		}
		return
	}

	if m.mode == Whole && m.dragging {
		sensitivity := m.cfg.FistSensitivity
		if m.wholePinchMode {
			sensitivity = m.cfg.EscalatedSensitivity
		}
		m.dragWhole(cursor, sensitivity)
	}
}

// onOpen reports whether the frame should edge-pan.
func (m *Machine) onOpen(emit func(Intent)) bool {
	openEdge := !m.openFired
	m.dragging = false
	m.pinchFired = false
	m.fistActionFired = false
	m.openFired = true
	m.clearHold()
	m.guard.Reset()

	switch m.mode {
	case Whole:
		emit(Intent{Kind: Explode})
		m.mode = Scattered
	case Scattered:
		if openEdge && m.selected {
			emit(Intent{Kind: Focus})
			m.selected = false
			m.enter(Focused)
			return false
		}
	case Focused:
		return false
	}
	return m.mode == Scattered
}

func (m *Machine) onPinch(cursor Point, emit func(Intent)) {
	m.dragging = false
	m.fistActionFired = false
	m.openFired = false
	m.clearHold()

	edge := !m.pinchFired
	m.pinchFired = true

	switch m.mode {
	case Scattered:
		if edge {
			emit(RaycastAt(cursor))
		}
	case Whole:
		if edge {
			m.anchor = cursor
			m.global.Zero()
			m.guard.Reset()
			return
		}
		m.dragWhole(cursor, m.cfg.EscalatedSensitivity)
	case Focused:
		if edge {
			m.anchor = cursor
			m.local.Zero()
			return
		}
		delta := Point{X: cursor.X - m.anchor.X, Y: cursor.Y - m.anchor.Y}
		m.local.Set(delta, math.Pi*m.cfg.FocusedSensitivity)
		m.anchor = cursor
	}
}

func (m *Machine) releaseAll() {
	m.dragging = false
	m.pinchFired = false
	m.fistActionFired = false
	m.openFired = false
	m.clearHold()
	m.guard.Reset()
}

func (m *Machine) clearHold() {
	m.fistHoldStart = time.Time{}
	m.wholePinchMode = false
}

// dragWhole turns a guarded cursor delta into global velocity.
func (m *Machine) dragWhole(cursor Point, sensitivity float64) {
	delta, verdict := m.guard.Filter(cursor, &m.anchor)
	switch verdict {
	case AtEdge:
		m.global.Zero()
	case Apply:
		m.global.Set(delta, math.Pi*sensitivity)
	}
}

// edgePan sets global velocity from how far the cursor sits outside the
// central deadzone. It returns nil inside the deadzone.
func (m *Machine) edgePan(cursor Point) *Pan {
	dx, dy := cursor.X-Center.X, cursor.Y-Center.Y
	dist := math.Hypot(dx, dy)
	if dist <= m.cfg.PanDeadzone || dist == 0 {
		return nil
	}
	dir := Point{X: dx / dist, Y: dy / dist}
	overflow := dist - m.cfg.PanDeadzone
	m.global.Set(dir, overflow*m.cfg.PanSpeed)
	return &Pan{X: dir.X, Y: dir.Y, Intensity: overflow}
}

// ApplyMomentum damps velocities that are not being driven and composes
// both velocities into their orientations.
func (m *Machine) ApplyMomentum() {
	if !m.globalDriven() {
		m.global.Damp(m.cfg.Damping, m.cfg.StopThreshold)
	}
	if m.global.Moving(m.cfg.RotationEpsilon) {
		m.globalQuat.Rotate(m.global)
	}

	if m.mode != Focused {
		return
	}
	if !m.pinchFired {
		m.local.Damp(m.cfg.Damping, m.cfg.StopThreshold)
	}
	if m.local.Moving(m.cfg.RotationEpsilon) {
		m.localQuat.Rotate(m.local)
	}
}

func (m *Machine) globalDriven() bool {
	return m.mode == Whole && (m.dragging || m.pinchFired)
}

// SetMode forces the mode. Entering FOCUSED resets the local orientation
// and velocity.
func (m *Machine) SetMode(mode Mode) {
	if !mode.Valid() {
		return
	}
	m.enter(mode)
}

func (m *Machine) enter(mode Mode) {
	m.mode = mode
	if mode == Focused {
		m.localQuat = Identity()
		m.local.Zero()
	}
}

// SetSelected records whether the renderer currently has a part picked.
func (m *Machine) SetSelected(selected bool) {
	m.selected = selected
}

// Reset returns to WHOLE with zero velocity and identity local orientation.
// The global orientation is kept.
func (m *Machine) Reset() {
	m.mode = Whole
	m.global.Zero()
	m.local.Zero()
	m.localQuat = Identity()
	m.anchor = Center
	m.selected = false
	m.releaseAll()
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode { return m.mode }

// Selected reports the renderer pick state.
func (m *Machine) Selected() bool { return m.selected }

// GlobalVelocity returns the global angular velocity.
func (m *Machine) GlobalVelocity() DampedAxisPair { return m.global }

// LocalVelocity returns the focused-part angular velocity.
func (m *Machine) LocalVelocity() DampedAxisPair { return m.local }

// GlobalOrientation returns the accumulated model orientation.
func (m *Machine) GlobalOrientation() Orientation { return m.globalQuat }

// LocalOrientation returns the accumulated focused-part orientation.
func (m *Machine) LocalOrientation() Orientation { return m.localQuat }

// EdgeLocked reports whether the WHOLE drag guard is locked.
func (m *Machine) EdgeLocked() bool { return m.guard.Locked() }
