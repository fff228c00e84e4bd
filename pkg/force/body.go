package force

// Body is the simulation state of one node. Index is its arena position and
// matches the node's position in the source graph.
type Body struct {
	Index int
	ID    string

	X, Y   float64
	VX, VY float64

	fx, fy float64
	fixed  bool
}

// Pin fixes the body at (x, y). The position takes effect at the end of the
// next tick; callers that need it immediately also set X and Y.
func (b *Body) Pin(x, y float64) {
	b.fx, b.fy, b.fixed = x, y, true
}

// Unpin releases a fixed body.
func (b *Body) Unpin() {
	b.fx, b.fy, b.fixed = 0, 0, false
}

// Fixed returns the pinned position and whether the body is pinned.
func (b *Body) Fixed() (fx, fy float64, ok bool) {
	return b.fx, b.fy, b.fixed
}

// Spring is a link resolved to arena indices.
type Spring struct {
	Index          int // position in the source graph's link slice
	Source, Target int

	Distance float64
	Strength float64
	// Bias is the share of the correction applied to the target;
	// the source receives 1-Bias.
	Bias float64
}

// SelfLoop reports whether both ends are the same body.
func (s *Spring) SelfLoop() bool { return s.Source == s.Target }
