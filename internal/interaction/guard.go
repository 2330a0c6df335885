package interaction

import "math"

// Verdict tells the caller what to do with a guarded drag sample.
type Verdict uint8

const (
	// Apply means the returned delta is trustworthy.
	Apply Verdict = iota
	// Hold means the sample is withheld; the anchor was refreshed.
	Hold
	// AtEdge means the cursor is inside the edge margin; the caller should
	// stop the driven velocity.
	AtEdge
)

// EdgeGuard filters drag samples near the frame border and single-frame
// tracking jumps.
type EdgeGuard struct {
	Margin        float64
	ReentryFrames int
	DeltaClamp    float64

	locked   bool
	safe     int
	cooldown int
}

// NewEdgeGuard creates an unlocked guard.
func NewEdgeGuard(margin float64, reentryFrames int, deltaClamp float64) EdgeGuard {
	return EdgeGuard{Margin: margin, ReentryFrames: reentryFrames, DeltaClamp: deltaClamp}
}

// Filter checks cursor against anchor and returns the delta to apply. The
// anchor always ends up at cursor.
func (g *EdgeGuard) Filter(cursor Point, anchor *Point) (Point, Verdict) {
	last := *anchor
	*anchor = cursor

	if g.nearEdge(cursor) {
		g.locked = true
		g.safe = 0
		g.cooldown = 2
		return Point{}, AtEdge
	}

	if g.locked {
		g.safe++
		if g.safe >= g.ReentryFrames {
			g.locked = false
			g.safe = 0
		}
		return Point{}, Hold
	}

	if g.cooldown > 0 {
		g.cooldown--
		return Point{}, Hold
	}

	delta := Point{X: cursor.X - last.X, Y: cursor.Y - last.Y}
	if math.Abs(delta.X) > g.DeltaClamp || math.Abs(delta.Y) > g.DeltaClamp {
		g.cooldown = 1
		return Point{}, Hold
	}
	return delta, Apply
}

// Locked reports whether the guard is waiting for clean re-entry frames.
func (g *EdgeGuard) Locked() bool {
	return g.locked
}

// Reset unlocks the guard and clears its counters.
func (g *EdgeGuard) Reset() {
	g.locked = false
	g.safe = 0
	g.cooldown = 0
}

func (g *EdgeGuard) nearEdge(p Point) bool {
	m := g.Margin
	return p.X < m || p.X > 1-m || p.Y < m || p.Y > 1-m
}
