package app

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/interaction"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/metrics"
)

// FrameResult is everything the renderer needs after one frame.
type FrameResult struct {
	Sequence          uint64                     `json:"seq"`
	Timestamp         time.Time                  `json:"timestamp"`
	Tracked           bool                       `json:"tracked"`
	Gesture           gesture.Gesture            `json:"gesture"`
	RawGesture        gesture.Gesture            `json:"raw_gesture"`
	Effective         gesture.Gesture            `json:"effective_gesture"`
	Mode              interaction.Mode           `json:"mode"`
	Cursor            interaction.Point          `json:"cursor"`
	Pan               *interaction.Pan           `json:"pan,omitempty"`
	Intents           []interaction.Intent       `json:"intents,omitempty"`
	GlobalOrientation interaction.Orientation    `json:"global_orientation"`
	LocalOrientation  interaction.Orientation    `json:"local_orientation"`
	GlobalVelocity    interaction.DampedAxisPair `json:"global_velocity"`
	Confidence        float64                    `json:"confidence"`
	Alpha             float64                    `json:"alpha"`
}

// Sink receives every frame result. Implementations must not block.
type Sink interface {
	Publish(FrameResult)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(FrameResult)

// Publish calls f.
func (f SinkFunc) Publish(r FrameResult) { f(r) }

// Tuning is the full set of pipeline and machine parameters.
type Tuning struct {
	Gesture     gesture.Config     `yaml:"gesture" json:"gesture"`
	Interaction interaction.Config `yaml:"interaction" json:"interaction"`
}

// DefaultTuning returns the default pipeline and machine parameters.
func DefaultTuning() Tuning {
	return Tuning{
		Gesture:     gesture.DefaultConfig(),
		Interaction: interaction.DefaultConfig(),
	}
}

// Validate checks both parameter sets.
func (t Tuning) Validate() error {
	var errs []error
	if err := t.Gesture.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("gesture: %w", err))
	}
	if err := t.Interaction.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("interaction: %w", err))
	}
	return errors.Join(errs...)
}

// Session runs one hand through the gesture pipeline and interaction
// machine. Frames are processed one at a time.
type Session struct {
	mu       sync.Mutex
	tuning   Tuning
	pipeline *gesture.Pipeline
	machine  *interaction.Machine
	seq      uint64
	last     FrameResult

	sinks   []Sink
	metrics *metrics.Metrics
	logger  *slog.Logger

	// fallbackScore is reported for frames that arrive without a score.
	fallbackScore float64
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithMetrics records frame, gesture, intent and mode metrics.
func WithMetrics(m *metrics.Metrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithFallbackConfidence sets the confidence reported for frames whose
// tracker gave no score.
func WithFallbackConfidence(score float64) SessionOption {
	return func(s *Session) { s.fallbackScore = landmark.Clamp01(score) }
}

// WithSink adds an output sink.
func WithSink(sink Sink) SessionOption {
	return func(s *Session) { s.sinks = append(s.sinks, sink) }
}

// NewSession creates a session in WHOLE mode publishing NONE.
func NewSession(tuning Tuning, opts ...SessionOption) *Session {
	s := &Session{
		logger:        slog.Default(),
		fallbackScore: detector.DefaultConfig().MinConfidence,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.apply(tuning)
	s.last = s.snapshot(time.Time{})
	s.metrics.RecordMode("", interaction.Whole.String())
	return s
}

func (s *Session) apply(tuning Tuning) {
	s.tuning = tuning
	s.pipeline = gesture.NewPipeline(tuning.Gesture)
	s.machine = interaction.NewMachine(tuning.Interaction)
}

// AddSink registers an output sink.
func (s *Session) AddSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// Process runs one tracked hand at now. A nil hand is a lost frame.
func (s *Session) Process(hand *landmark.Hand, now time.Time) FrameResult {
	start := time.Now()

	s.mu.Lock()
	res := s.pipeline.Process(hand)
	cursor := interaction.Center
	if res.Tracked {
		tip := res.Points[landmark.IndexTip]
		cursor = interaction.Point{X: tip.X, Y: tip.Y}
	}
	prev := s.last

	out := s.machine.Update(interaction.Input{Gesture: res.Published, Cursor: cursor, Now: now})
	s.machine.ApplyMomentum()

	result := s.snapshot(now)
	result.Tracked = res.Tracked
	result.Gesture = res.Published
	result.RawGesture = res.Raw
	result.Effective = out.Effective
	result.Cursor = out.Cursor
	result.Pan = out.Pan
	result.Intents = out.Intents
	result.Confidence = res.Confidence
	result.Alpha = res.Alpha
	s.last = result
	sinks := s.sinks
	s.mu.Unlock()

	s.observe(prev, result, time.Since(start))
	for _, sink := range sinks {
		sink.Publish(result)
	}
	return result
}

// ProcessPoints validates a tracker slice and processes it. A slice that is
// not exactly 21 points long counts as a lost frame. A score of zero or less
// is replaced by the fallback confidence.
func (s *Session) ProcessPoints(points []landmark.Point3D, score float64, now time.Time) FrameResult {
	if score <= 0 {
		score = s.fallbackScore
	}
	hand, err := landmark.FromPoints(points, score)
	if err != nil {
		s.logger.Debug("dropping malformed frame", "points", len(points))
		return s.Process(nil, now)
	}
	return s.Process(&hand, now)
}

// Lost processes a frame without a hand.
func (s *Session) Lost(now time.Time) FrameResult {
	return s.Process(nil, now)
}

// snapshot fills the machine-derived fields. Caller holds mu.
func (s *Session) snapshot(now time.Time) FrameResult {
	s.seq++
	return FrameResult{
		Sequence:          s.seq,
		Timestamp:         now,
		Gesture:           s.pipeline.Published(),
		Effective:         s.pipeline.Published(),
		Mode:              s.machine.Mode(),
		Cursor:            interaction.Center,
		GlobalOrientation: s.machine.GlobalOrientation(),
		LocalOrientation:  s.machine.LocalOrientation(),
		GlobalVelocity:    s.machine.GlobalVelocity(),
	}
}

func (s *Session) observe(prev, cur FrameResult, took time.Duration) {
	s.metrics.RecordFrame(cur.Tracked, took)
	if cur.Gesture != prev.Gesture {
		s.metrics.RecordGesture(cur.Gesture.String())
		s.logger.Debug("gesture changed", "from", prev.Gesture, "to", cur.Gesture, "seq", cur.Sequence)
	}
	if cur.Mode != prev.Mode {
		s.metrics.RecordMode(prev.Mode.String(), cur.Mode.String())
		s.logger.Debug("mode changed", "from", prev.Mode, "to", cur.Mode, "seq", cur.Sequence)
	}
	for _, in := range cur.Intents {
		s.metrics.RecordIntent(in.Kind.String())
		s.logger.Debug("intent", "intent", in.String(), "seq", cur.Sequence)
	}
}

// SetMode forces the interaction mode, as the renderer does after a hit.
func (s *Session) SetMode(mode interaction.Mode) {
	s.mu.Lock()
	from := s.machine.Mode()
	s.machine.SetMode(mode)
	to := s.machine.Mode()
	s.last.Mode = to
	s.mu.Unlock()

	if from != to {
		s.metrics.RecordMode(from.String(), to.String())
		s.logger.Info("mode set", "from", from, "to", to)
	}
}

// SetSelected records whether the renderer has a part picked.
func (s *Session) SetSelected(selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.machine.SetSelected(selected)
}

// Reset clears pipeline and machine state: NONE, WHOLE, zero velocity.
func (s *Session) Reset() {
	s.mu.Lock()
	from := s.machine.Mode()
	s.pipeline.Reset()
	s.machine.Reset()
	s.last = s.snapshot(s.last.Timestamp)
	s.mu.Unlock()

	if from != interaction.Whole {
		s.metrics.RecordMode(from.String(), interaction.Whole.String())
	}
	s.logger.Info("session reset")
}

// Retune replaces all parameters and resets state.
func (s *Session) Retune(tuning Tuning) {
	s.mu.Lock()
	from := s.machine.Mode()
	s.apply(tuning)
	s.last = s.snapshot(s.last.Timestamp)
	s.mu.Unlock()

	if from != interaction.Whole {
		s.metrics.RecordMode(from.String(), interaction.Whole.String())
	}
	s.logger.Info("session retuned")
}

// Tuning returns the active parameters.
func (s *Session) Tuning() Tuning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tuning
}

// Last returns the most recent frame result.
func (s *Session) Last() FrameResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
