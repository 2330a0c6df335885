package gesture

// Classifier maps one smoothed frame to a raw gesture. It holds no state:
// the previously published gesture is passed in and only biases thresholds.
type Classifier struct {
	cfg ClassifierConfig
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify returns the raw gesture for points. Decision order is pinch, open,
// fist, then none; the first match wins.
func (c *Classifier) Classify(points *Frame, previous Gesture) Gesture {
	f := ExtractFeatures(points)
	return c.decide(f, previous)
}

func (c *Classifier) decide(f Features, previous Gesture) Gesture {
	cfg := c.cfg
	openSticky := previous == Open
	fistSticky := previous == Fist

	openYCount := f.countRaised(cfg.OpenVerticalGap.pick(openSticky))

	if c.pinchMatched(f) && (previous == Pinch || previous == Open || openYCount >= cfg.PinchBaselineCount) {
		return Pinch
	}

	openNeeded := cfg.OpenFingerCount.pick(openSticky)
	if f.countExtended(cfg.OpenExtension.pick(openSticky)) >= openNeeded &&
		openYCount >= openNeeded &&
		f.ThumbSpan > cfg.ThumbExtended.pick(openSticky) &&
		f.countExtended(cfg.OpenExtension.Enter) >= cfg.OpenMinStrictCount {
		return Open
	}

	fistNeeded := cfg.FistFingerCount.pick(fistSticky)
	if f.countCurled(cfg.FistCurl.pick(fistSticky)) >= fistNeeded &&
		f.countLevel(cfg.FistVerticalGap.pick(fistSticky)) >= fistNeeded &&
		f.ThumbSpan < cfg.ThumbCurled.pick(fistSticky) &&
		f.countCurled(cfg.FistCurl.Enter) >= cfg.FistMinStrictCount {
		return Fist
	}

	return None
}

func (c *Classifier) pinchMatched(f Features) bool {
	if c.cfg.ScaleInvariantPinch {
		return f.PinchRatio < c.cfg.PinchRatioThreshold
	}
	return f.PinchDistance < c.cfg.PinchThreshold
}
