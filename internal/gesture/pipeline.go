package gesture

import "github.com/ayusman/mudra/internal/landmark"

// Result is the pipeline output for one frame.
type Result struct {
	Published  Gesture `json:"gesture"`
	Raw        Gesture `json:"raw_gesture"`
	Points     Frame   `json:"-"`
	Alpha      float64 `json:"alpha"`
	Confidence float64 `json:"confidence"`
	Tracked    bool    `json:"tracked"`
}

// Pipeline chains smoother, classifier and stabilizer. It is not safe for
// concurrent use.
type Pipeline struct {
	cfg        Config
	smoother   *Smoother
	classifier *Classifier
	stabilizer *Stabilizer
}

// NewPipeline builds a pipeline from cfg.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		smoother:   NewSmoother(cfg.Smoother),
		classifier: NewClassifier(cfg.Classifier),
		stabilizer: NewStabilizer(cfg.Stabilizer),
	}
}

// Process runs one frame through the pipeline. A nil hand means tracking was
// lost: filter and vote window are cleared and None is published.
func (p *Pipeline) Process(hand *landmark.Hand) Result {
	if hand == nil {
		p.smoother.Reset()
		return Result{
			Published: p.stabilizer.Lost(),
			Raw:       None,
			Points:    landmark.Centered(),
			Alpha:     p.smoother.Alpha(),
		}
	}

	smoothed := p.smoother.Smooth(hand.Sanitize(p.cfg.FlipY))
	raw := p.classifier.Classify(&smoothed, p.stabilizer.Published())
	return Result{
		Published:  p.stabilizer.Stabilize(raw),
		Raw:        raw,
		Points:     smoothed,
		Alpha:      p.smoother.Alpha(),
		Confidence: landmark.Clamp01(hand.Score),
		Tracked:    true,
	}
}

// ProcessPoints validates a tracker slice before processing it. A slice that
// is not exactly NumLandmarks long is treated as a lost frame.
func (p *Pipeline) ProcessPoints(points []landmark.Point3D, score float64) Result {
	hand, err := landmark.FromPoints(points, score)
	if err != nil {
		return p.Process(nil)
	}
	return p.Process(&hand)
}

// Published returns the last published gesture.
func (p *Pipeline) Published() Gesture {
	return p.stabilizer.Published()
}

// Reset clears smoother and stabilizer state.
func (p *Pipeline) Reset() {
	p.smoother.Reset()
	p.stabilizer.Reset()
}
