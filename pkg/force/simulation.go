package force

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
)

// Simulation is a force layout over an index-resolved arena.
type Simulation struct {
	cfg Config

	nodes   []graph.Node
	links   []graph.Link
	index   map[string]int
	bodies  []Body
	springs []Spring
	charges []float64

	cx, cy float64

	alpha       float64
	alphaTarget float64
	ticks       int
	idle        bool

	rng *rand.Rand
}

// New builds a simulation over a private copy of g.
//
// Configuration errors are returned synchronously: non-positive dimensions
// (INVALID_DIMENSIONS), empty or duplicate ids (INVALID_NODE,
// DUPLICATE_NODE), and links naming unknown nodes (UNRESOLVED_LINK).
func New(g graph.Graph, cfg Config) (*Simulation, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	owned := g.Clone()
	index, err := owned.Index()
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		cfg:         cfg,
		nodes:       owned.Nodes,
		links:       owned.Links,
		index:       index,
		cx:          cfg.Width / 2,
		cy:          cfg.Height / 2,
		alpha:       cfg.Alpha,
		alphaTarget: cfg.AlphaTarget,
		rng:         rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
	s.initBodies()
	s.initSprings()
	s.initCharges()
	s.idle = len(s.bodies) == 0

	observability.Simulation().OnSetup(context.Background(), len(s.bodies), len(s.springs))
	return s, nil
}

// initBodies places nodes without a position on a phyllotaxis spiral around
// the center, giving every body a distinct starting point.
func (s *Simulation) initBodies() {
	s.bodies = make([]Body, len(s.nodes))
	angle := math.Pi * (3 - math.Sqrt(5))
	for i := range s.nodes {
		n := &s.nodes[i]
		b := &s.bodies[i]
		b.Index, b.ID = i, n.ID
		if n.Pinned() {
			b.Pin(*n.FX, *n.FY)
		}
		switch {
		case n.X != nil && n.Y != nil:
			b.X, b.Y = *n.X, *n.Y
		case b.fixed:
			b.X, b.Y = b.fx, b.fy
		default:
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * angle
			b.X = s.cx + r*math.Cos(a)
			b.Y = s.cy + r*math.Sin(a)
		}
	}
}

// initSprings resolves links to indices and computes per-spring distance,
// strength and bias. Self loops count toward nothing and exert no force.
func (s *Simulation) initSprings() {
	degree := make([]int, len(s.bodies))
	s.springs = make([]Spring, len(s.links))
	for i := range s.links {
		l := &s.links[i]
		sp := &s.springs[i]
		sp.Index = i
		sp.Source, sp.Target = s.index[l.Source], s.index[l.Target]
		if !sp.SelfLoop() {
			degree[sp.Source]++
			degree[sp.Target]++
		}
	}
	for i := range s.springs {
		sp := &s.springs[i]
		l := &s.links[i]
		sp.Distance = s.cfg.LinkDistance(l)
		if sp.SelfLoop() {
			continue
		}
		ds, dt := float64(degree[sp.Source]), float64(degree[sp.Target])
		sp.Bias = ds / (ds + dt)
		switch {
		case s.cfg.LinkStrength != nil:
			sp.Strength = s.cfg.LinkStrength(l)
		case l.Strength > 0:
			sp.Strength = l.Strength
		default:
			sp.Strength = 1 / min(ds, dt)
		}
	}
}

func (s *Simulation) initCharges() {
	s.charges = make([]float64, len(s.nodes))
	for i := range s.nodes {
		s.charges[i] = s.cfg.Charge(&s.nodes[i])
	}
}

// =============================================================================
// Ticking
// =============================================================================

// Tick advances the simulation by one step regardless of alpha.
func (s *Simulation) Tick() {
	s.alpha += (s.alphaTarget - s.alpha) * s.cfg.AlphaDecay

	for range s.cfg.LinkIterations {
		s.applyLinks()
	}
	s.applyManyBody()
	s.applyCenter()

	keep := 1 - s.cfg.VelocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.fixed {
			b.X, b.Y = b.fx, b.fy
			b.VX, b.VY = 0, 0
			continue
		}
		b.VX *= keep
		b.VY *= keep
		b.X += b.VX
		b.Y += b.VY
	}
	s.ticks++
}

// Step is the frame callback. It ticks once unless the simulation is idle
// (no bodies, or alpha already below alphaMin) and reports whether it
// ticked. When alpha falls below alphaMin the simulation goes idle.
func (s *Simulation) Step() bool {
	if s.idle {
		return false
	}
	if len(s.bodies) == 0 || s.alpha < s.cfg.AlphaMin {
		s.stop(context.Background())
		return false
	}
	s.Tick()
	if s.alpha < s.cfg.AlphaMin {
		s.stop(context.Background())
	}
	return true
}

// Run ticks until the simulation goes idle, maxTicks ticks have run
// (0 means no limit), or ctx is done. It returns the number of ticks run.
func (s *Simulation) Run(ctx context.Context, maxTicks int) (int, error) {
	n := 0
	for maxTicks <= 0 || n < maxTicks {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if !s.Step() {
			break
		}
		n++
	}
	return n, nil
}

func (s *Simulation) stop(ctx context.Context) {
	s.idle = true
	observability.Simulation().OnConverged(ctx, s.ticks, s.alpha)
}

// =============================================================================
// Alpha control
// =============================================================================

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets the temperature.
func (s *Simulation) SetAlpha(a float64) { s.alpha = a }

// AlphaTarget returns the value alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlphaTarget sets the value alpha decays toward.
func (s *Simulation) SetAlphaTarget(t float64) { s.alphaTarget = t }

// AlphaMin returns the idle threshold.
func (s *Simulation) AlphaMin() float64 { return s.cfg.AlphaMin }

// Restart resumes ticking after the simulation went idle.
func (s *Simulation) Restart() {
	if len(s.bodies) > 0 {
		s.idle = false
	}
}

// Reheat raises alpha to at least a, targets t, and restarts.
func (s *Simulation) Reheat(a, t float64) {
	s.alphaTarget = t
	if s.alpha < a {
		s.alpha = a
	}
	s.Restart()
	observability.Simulation().OnReheat(context.Background(), s.alpha)
}

// Active reports whether Step would tick.
func (s *Simulation) Active() bool { return !s.idle }

// Converged reports whether alpha has fallen below alphaMin.
func (s *Simulation) Converged() bool { return s.alpha < s.cfg.AlphaMin }

// Ticks returns the number of ticks run so far.
func (s *Simulation) Ticks() int { return s.ticks }

// =============================================================================
// Accessors
// =============================================================================

// Config returns the effective configuration, defaults applied.
func (s *Simulation) Config() Config { return s.cfg }

// Center returns the centering target.
func (s *Simulation) Center() (x, y float64) { return s.cx, s.cy }

// Len returns the number of bodies.
func (s *Simulation) Len() int { return len(s.bodies) }

// Bodies returns the arena. Callers may mutate positions and pins between
// ticks, but must not grow or reorder the slice.
func (s *Simulation) Bodies() []Body { return s.bodies }

// Body returns the body at index i.
func (s *Simulation) Body(i int) *Body { return &s.bodies[i] }

// Springs returns the resolved links in source order.
func (s *Simulation) Springs() []Spring { return s.springs }

// Node returns the node data for body i.
func (s *Simulation) Node(i int) *graph.Node { return &s.nodes[i] }

// Link returns the link data for spring i.
func (s *Simulation) Link(i int) *graph.Link { return &s.links[i] }

// Lookup returns the index of the node with the given id.
func (s *Simulation) Lookup(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Pin fixes the node with the given id at (x, y) and moves it there.
func (s *Simulation) Pin(id string, x, y float64) error {
	i, ok := s.index[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	b := &s.bodies[i]
	b.Pin(x, y)
	b.X, b.Y = x, y
	return nil
}

// Unpin releases the node with the given id.
func (s *Simulation) Unpin(id string) error {
	i, ok := s.index[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", id)
	}
	s.bodies[i].Unpin()
	return nil
}

// Find returns the index of the body nearest (x, y) within radius, or -1.
// A non-positive radius means unbounded.
func (s *Simulation) Find(x, y, radius float64) int {
	best := -1
	bestD2 := math.Inf(1)
	if radius > 0 {
		bestD2 = radius * radius
	}
	for i := range s.bodies {
		dx, dy := s.bodies[i].X-x, s.bodies[i].Y-y
		if d2 := dx*dx + dy*dy; d2 < bestD2 {
			best, bestD2 = i, d2
		}
	}
	return best
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * jiggleMagnitude
}

// Position is a convenience for tests and sinks.
func (s *Simulation) Position(id string) (x, y float64, ok bool) {
	i, ok := s.index[id]
	if !ok {
		return 0, 0, false
	}
	return s.bodies[i].X, s.bodies[i].Y, true
}
