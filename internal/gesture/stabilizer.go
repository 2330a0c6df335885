package gesture

// Stabilizer debounces raw gestures into the published gesture in three
// steps: a transition guard, a sliding majority vote and a hold-debounce.
type Stabilizer struct {
	cfg StabilizerConfig

	window     []Gesture
	openFrames int

	candidate       Gesture
	candidateFrames int
	published       Gesture
}

// NewStabilizer creates a Stabilizer publishing None.
func NewStabilizer(cfg StabilizerConfig) *Stabilizer {
	s := &Stabilizer{cfg: cfg}
	s.clearWindow()
	return s
}

// Stabilize feeds one raw gesture and returns the published gesture.
func (s *Stabilizer) Stabilize(raw Gesture) Gesture {
	if !raw.Valid() {
		raw = None
	}
	guarded := s.guard(raw)
	voted := s.vote(guarded)
	return s.commit(voted)
}

// Lost handles a frame without a usable hand: the window and the open counter
// are cleared and None is published immediately.
func (s *Stabilizer) Lost() Gesture {
	s.clearWindow()
	s.openFrames = 0
	s.candidate = None
	s.candidateFrames = max(s.cfg.HoldFrames, 1)
	s.published = None
	return None
}

// Published returns the current published gesture.
func (s *Stabilizer) Published() Gesture {
	return s.published
}

// Reset returns the stabilizer to its initial state.
func (s *Stabilizer) Reset() {
	s.clearWindow()
	s.openFrames = 0
	s.candidate = None
	s.candidateFrames = 0
	s.published = None
}

// clearWindow fills the window with None so a new label needs a majority of
// a full window before it can win.
func (s *Stabilizer) clearWindow() {
	size := max(s.cfg.VoteWindow, 1)
	if cap(s.window) < size {
		s.window = make([]Gesture, size)
	}
	s.window = s.window[:size]
	for i := range s.window {
		s.window[i] = None
	}
}

// guard suppresses Open right after a critical gesture until it has been seen
// for OpenConfirmFrames consecutive raw frames.
func (s *Stabilizer) guard(raw Gesture) Gesture {
	if raw == Open {
		s.openFrames++
	} else {
		s.openFrames = 0
	}
	if s.published.Critical() && raw == Open && s.openFrames < s.cfg.OpenConfirmFrames {
		return None
	}
	return raw
}

// vote pushes g into the window and returns its most frequent label. Ties go
// to the published gesture, then to the label that entered the window first.
func (s *Stabilizer) vote(g Gesture) Gesture {
	size := max(s.cfg.VoteWindow, 1)
	if len(s.window) >= size {
		n := copy(s.window, s.window[len(s.window)-size+1:])
		s.window = s.window[:n]
	}
	s.window = append(s.window, g)

	var counts [len(gestureNames)]int
	var order []Gesture
	for _, w := range s.window {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	winner, best := s.published, -1
	for _, candidate := range order {
		switch n := counts[candidate]; {
		case n > best:
			winner, best = candidate, n
		case n == best && candidate == s.published:
			winner = candidate
		}
	}
	return winner
}

// commit replaces the published gesture once the same vote winner has been
// seen HoldFrames times in a row.
func (s *Stabilizer) commit(g Gesture) Gesture {
	if g != s.candidate {
		s.candidate = g
		s.candidateFrames = 1
	} else {
		s.candidateFrames++
	}
	if s.candidate != s.published && s.candidateFrames >= s.cfg.HoldFrames {
		s.published = s.candidate
	}
	return s.published
}
