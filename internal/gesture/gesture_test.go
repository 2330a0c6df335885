package gesture

import (
	"math"
	"testing"

	"github.com/ayusman/mudra/internal/landmark"
	"github.com/google/go-cmp/cmp"
)

const epsilon = 1e-9

func sanitized(h landmark.Hand) Frame {
	return h.Sanitize(false)
}

// threeFingerOpen is an open palm whose pinky is curled.
func threeFingerOpen() landmark.Hand {
	h := landmark.OpenPalm()
	h.Points[landmark.PinkyTip] = landmark.Point3D{X: 0.43, Y: 0.68}
	return h
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Gesture
	}{
		{"OPEN", Open},
		{"FIST", Fist},
		{"CLOSED", Fist},
		{"PINCH", Pinch},
		{"NONE", None},
		{"", None},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := Parse("WAVE"); err == nil {
		t.Error("expected error for unknown gesture")
	}
	if _, err := Gesture(9).MarshalText(); err == nil {
		t.Error("expected error marshaling out-of-range gesture")
	}
}

func TestExtractFeatures(t *testing.T) {
	t.Run("degenerate frame stays finite", func(t *testing.T) {
		var f Frame
		feat := ExtractFeatures(&f)

		if feat.HandScale != minHandScale {
			t.Errorf("expected epsilon hand scale, got %g", feat.HandScale)
		}
		if math.IsNaN(feat.PinchRatio) || math.IsInf(feat.PinchRatio, 0) {
			t.Errorf("expected finite pinch ratio, got %g", feat.PinchRatio)
		}
	})

	t.Run("NaN coordinates are clamped", func(t *testing.T) {
		f := sanitized(landmark.OpenPalm())
		f[landmark.IndexTip].X = math.NaN()
		feat := ExtractFeatures(&f)

		if math.IsNaN(feat.PinchDistance) || math.IsNaN(feat.Extension[0]) {
			t.Error("expected NaN input to be clamped before measuring")
		}
	})

	t.Run("open palm measures extended fingers", func(t *testing.T) {
		f := sanitized(landmark.OpenPalm())
		feat := ExtractFeatures(&f)

		for i, d := range feat.Extension {
			if d <= 0.1 {
				t.Errorf("finger %d: expected extension > 0.1, got %f", i, d)
			}
		}
		if feat.PinchRatio < 1 {
			t.Errorf("expected wide pinch ratio, got %f", feat.PinchRatio)
		}
	})
}

func TestClassifier_Presets(t *testing.T) {
	c := NewClassifier(DefaultConfig().Classifier)

	tests := []struct {
		name string
		hand landmark.Hand
		want Gesture
	}{
		{"open palm", landmark.OpenPalm(), Open},
		{"fist", landmark.Fist(), Fist},
		{"pinch", landmark.Pinch(), Pinch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := sanitized(tt.hand)
			for _, prev := range []Gesture{None, Open, Fist, Pinch} {
				if got := c.Classify(&f, prev); got != tt.want {
					t.Errorf("previous %v: got %v, want %v", prev, got, tt.want)
				}
			}
		})
	}
}

func TestClassifier_Hysteresis(t *testing.T) {
	c := NewClassifier(DefaultConfig().Classifier)
	f := sanitized(threeFingerOpen())

	if got := c.Classify(&f, Open); got != Open {
		t.Errorf("previous OPEN: expected three fingers to stay OPEN, got %v", got)
	}
	if got := c.Classify(&f, None); got != None {
		t.Errorf("previous NONE: expected three fingers to be NONE, got %v", got)
	}
}

func TestClassifier_PinchBaseline(t *testing.T) {
	c := NewClassifier(DefaultConfig().Classifier)

	// Closing fist with the index tip brushing the thumb tip.
	h := landmark.Fist()
	h.Points[landmark.IndexTip] = landmark.Point3D{X: 0.535, Y: 0.745}
	f := sanitized(h)

	if got := c.Classify(&f, None); got == Pinch {
		t.Error("expected closing fist not to be read as a pinch")
	}
	if got := c.Classify(&f, Open); got != Pinch {
		t.Errorf("previous OPEN: expected PINCH, got %v", got)
	}
}

func TestClassifier_RawDistancePinch(t *testing.T) {
	cfg := DefaultConfig().Classifier
	cfg.ScaleInvariantPinch = false
	c := NewClassifier(cfg)

	f := sanitized(landmark.Pinch())
	if got := c.Classify(&f, None); got != Pinch {
		t.Errorf("expected PINCH with raw distance, got %v", got)
	}

	cfg.PinchThreshold = 0.001
	c = NewClassifier(cfg)
	if got := c.Classify(&f, None); got == Pinch {
		t.Error("expected tiny raw threshold to reject the pinch")
	}
}

func TestSmoother(t *testing.T) {
	cfg := DefaultConfig().Smoother

	t.Run("first frame seeds without smoothing", func(t *testing.T) {
		s := NewSmoother(cfg)
		in := sanitized(landmark.OpenPalm())

		out := s.Smooth(in)

		if diff := cmp.Diff(in, out); diff != "" {
			t.Errorf("seed frame mismatch (-want +got):\n%s", diff)
		}
		if !s.Seeded() {
			t.Error("expected smoother to be seeded")
		}
	})

	t.Run("still hand uses minimum alpha", func(t *testing.T) {
		s := NewSmoother(cfg)
		in := sanitized(landmark.OpenPalm())
		s.Smooth(in)
		s.Smooth(in)

		if math.Abs(s.Alpha()-cfg.MinAlpha) > epsilon {
			t.Errorf("expected alpha %f, got %f", cfg.MinAlpha, s.Alpha())
		}
	})

	t.Run("fast hand uses maximum alpha", func(t *testing.T) {
		s := NewSmoother(cfg)
		a := sanitized(landmark.OpenPalm())
		b := sanitized(landmark.OpenPalm().Translate(0.1, 0))
		s.Smooth(a)

		out := s.Smooth(b)

		if math.Abs(s.Alpha()-cfg.MaxAlpha) > epsilon {
			t.Errorf("expected alpha %f, got %f", cfg.MaxAlpha, s.Alpha())
		}
		want := 0.5*b[landmark.IndexTip].X + 0.5*a[landmark.IndexTip].X
		if math.Abs(out[landmark.IndexTip].X-want) > epsilon {
			t.Errorf("expected blended X %f, got %f", want, out[landmark.IndexTip].X)
		}
	})

	t.Run("fixed alpha when not adaptive", func(t *testing.T) {
		fixed := cfg
		fixed.Adaptive = false
		s := NewSmoother(fixed)
		s.Smooth(sanitized(landmark.OpenPalm()))
		s.Smooth(sanitized(landmark.OpenPalm().Translate(0.2, 0)))

		if math.Abs(s.Alpha()-fixed.Alpha) > epsilon {
			t.Errorf("expected alpha %f, got %f", fixed.Alpha, s.Alpha())
		}
	})

	t.Run("reset reseeds", func(t *testing.T) {
		s := NewSmoother(cfg)
		s.Smooth(sanitized(landmark.OpenPalm()))
		s.Reset()

		in := sanitized(landmark.Fist())
		if diff := cmp.Diff(in, s.Smooth(in)); diff != "" {
			t.Errorf("expected no carry-over after reset (-want +got):\n%s", diff)
		}
	})
}

func feed(s *Stabilizer, raws ...Gesture) []Gesture {
	out := make([]Gesture, 0, len(raws))
	for _, g := range raws {
		out = append(out, s.Stabilize(g))
	}
	return out
}

func TestStabilizer(t *testing.T) {
	t.Run("debounce after critical state", func(t *testing.T) {
		s := NewStabilizer(StabilizerConfig{OpenConfirmFrames: 2, VoteWindow: 3, HoldFrames: 1})
		feed(s, Fist, Fist, Fist)
		if s.Published() != Fist {
			t.Fatalf("expected published FIST, got %v", s.Published())
		}

		got := feed(s, Fist, Fist, Open, Open, Open)

		want := []Gesture{Fist, Fist, Fist, Fist, Open}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("published sequence mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("default window holds one frame longer", func(t *testing.T) {
		s := NewStabilizer(DefaultConfig().Stabilizer)
		feed(s, Fist, Fist, Fist, Fist, Fist)

		got := feed(s, Fist, Fist, Open, Open, Open, Open)

		want := []Gesture{Fist, Fist, Fist, Fist, Fist, Open}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("published sequence mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("single frame spike never publishes", func(t *testing.T) {
		s := NewStabilizer(DefaultConfig().Stabilizer)
		feed(s, Open, Open, Open, Open, Open)

		got := feed(s, Fist, Open, Open)

		for i, g := range got {
			if g != Open {
				t.Errorf("frame %d: expected OPEN, got %v", i, g)
			}
		}
	})

	t.Run("single frame spike into a fresh window never publishes", func(t *testing.T) {
		fist := func(s *Stabilizer) { feed(s, Fist, Fist, Fist, Fist, Fist) }
		tests := []struct {
			name  string
			cfg   StabilizerConfig
			setup func(s *Stabilizer)
		}{
			{"new", DefaultConfig().Stabilizer, func(*Stabilizer) {}},
			{"after lost", DefaultConfig().Stabilizer, func(s *Stabilizer) { fist(s); s.Lost() }},
			{"after reset", DefaultConfig().Stabilizer, func(s *Stabilizer) { fist(s); s.Reset() }},
			{"after lost, two hold frames", StabilizerConfig{OpenConfirmFrames: 2, VoteWindow: 5, HoldFrames: 2},
				func(s *Stabilizer) { fist(s); s.Lost() }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := NewStabilizer(tt.cfg)
				tt.setup(s)

				got := feed(s, Open, Fist, Fist)

				for i, g := range got {
					if g == Open {
						t.Errorf("frame %d: one OPEN frame was published, sequence %v", i, got)
					}
				}
			})
		}
	})

	t.Run("a fresh window needs a majority", func(t *testing.T) {
		s := NewStabilizer(DefaultConfig().Stabilizer)

		got := feed(s, Pinch, Pinch, Pinch)

		want := []Gesture{None, None, Pinch}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("published sequence mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("hold frames delay the commit", func(t *testing.T) {
		s := NewStabilizer(StabilizerConfig{OpenConfirmFrames: 2, VoteWindow: 1, HoldFrames: 2})

		got := feed(s, Pinch, Pinch, Pinch)

		want := []Gesture{None, Pinch, Pinch}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("published sequence mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("lost publishes none immediately", func(t *testing.T) {
		s := NewStabilizer(StabilizerConfig{OpenConfirmFrames: 2, VoteWindow: 5, HoldFrames: 2})
		feed(s, Fist, Fist, Fist, Fist)

		if got := s.Lost(); got != None {
			t.Errorf("expected NONE, got %v", got)
		}
		if s.Published() != None {
			t.Errorf("expected published NONE, got %v", s.Published())
		}
	})

	t.Run("invalid raw labels count as none", func(t *testing.T) {
		s := NewStabilizer(DefaultConfig().Stabilizer)
		if got := s.Stabilize(Gesture(42)); got != None {
			t.Errorf("expected NONE, got %v", got)
		}
	})
}

func TestPipeline(t *testing.T) {
	t.Run("steady poses publish their gesture", func(t *testing.T) {
		tests := []struct {
			name string
			hand landmark.Hand
			want Gesture
		}{
			{"open", landmark.OpenPalm(), Open},
			{"fist", landmark.Fist(), Fist},
			{"pinch", landmark.Pinch(), Pinch},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				p := NewPipeline(DefaultConfig())
				var res Result
				for i := 0; i < 3; i++ {
					hand := tt.hand
					res = p.Process(&hand)
				}
				if res.Published != tt.want {
					t.Errorf("expected %v, got %v", tt.want, res.Published)
				}
				if !res.Tracked {
					t.Error("expected tracked result")
				}
			})
		}
	})

	t.Run("loss resets and publishes none", func(t *testing.T) {
		p := NewPipeline(DefaultConfig())
		for i := 0; i < 3; i++ {
			hand := landmark.Fist()
			p.Process(&hand)
		}

		res := p.Process(nil)

		if res.Published != None || res.Tracked {
			t.Errorf("expected untracked NONE, got %+v", res)
		}
		if res.Points[landmark.IndexTip] != landmark.CenterPoint {
			t.Errorf("expected centred landmarks, got %+v", res.Points[landmark.IndexTip])
		}
	})

	t.Run("malformed slice is treated as loss", func(t *testing.T) {
		p := NewPipeline(DefaultConfig())
		hand := landmark.OpenPalm()
		p.Process(&hand)
		p.Process(&hand)

		res := p.ProcessPoints(make([]landmark.Point3D, 20), 0.9)

		if res.Published != None {
			t.Errorf("expected NONE, got %v", res.Published)
		}
	})

	t.Run("every published value is a valid gesture", func(t *testing.T) {
		p := NewPipeline(DefaultConfig())
		hands := []landmark.Hand{
			landmark.OpenPalm(),
			landmark.Pinch(),
			landmark.Fist(),
			threeFingerOpen(),
		}
		for i := 0; i < 40; i++ {
			h := hands[i%len(hands)].Translate(float64(i%7)*0.01, 0)
			if res := p.Process(&h); !res.Published.Valid() {
				t.Fatalf("frame %d: invalid published gesture %v", i, res.Published)
			}
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.Stabilizer.VoteWindow = 0
	cfg.Smoother.MinAlpha = 0.9
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error")
	}
}
