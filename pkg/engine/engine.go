package engine

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interact"
	"github.com/matzehuels/forcegraph/pkg/render"
)

// Options configures an Engine. Zero values take the package defaults.
type Options struct {
	Force    force.Config
	Render   render.Options
	Interact interact.Options

	// Callbacks receives click and hover notifications. May be nil.
	Callbacks interact.Callbacks
	// Scheduler drives frames. Nil selects Manual: the host calls Frame.
	Scheduler Scheduler
	// Clock supplies frame timestamps; nil selects time.Now.
	Clock func() time.Time
	// Logger receives lifecycle debug lines; nil discards.
	Logger *log.Logger
}

// DefaultOptions enables drag, zoom, tooltips and the entry animation.
func DefaultOptions() Options {
	return Options{
		Render:   render.DefaultOptions(),
		Interact: interact.DefaultOptions(),
	}
}

// Engine glues one simulation, one interaction controller and one render
// binder to one surface. Its methods are safe for concurrent use; with a
// TickerScheduler, hosts should route events through Post so they run
// between frames on the frame goroutine.
type Engine struct {
	mu sync.Mutex

	opts  Options
	sched Scheduler
	clock func() time.Time
	log   *log.Logger

	graph  graph.Graph
	sim    *force.Simulation
	ctl    *interact.Controller
	binder *render.Binder

	surface   render.Surface
	mounted   bool
	mountedAt time.Time
	frames    int
}

// New validates every option and builds the simulation. Configuration
// errors (dimensions, ids, unresolved links, render options) are returned
// here; nothing is drawn until Mount.
func New(g graph.Graph, opts Options) (*Engine, error) {
	if opts.Scheduler == nil {
		opts.Scheduler = &Manual{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	sim, err := force.New(g, opts.Force)
	if err != nil {
		return nil, err
	}
	binder, err := render.NewBinder(opts.Render)
	if err != nil {
		return nil, err
	}
	if err := validateScale(opts.Interact); err != nil {
		return nil, err
	}

	e := &Engine{
		opts:   opts,
		sched:  opts.Scheduler,
		clock:  opts.Clock,
		log:    opts.Logger,
		graph:  g.Clone(),
		sim:    sim,
		binder: binder,
	}
	e.ctl = interact.NewController(sim, opts.Callbacks, e.interactOptions())
	return e, nil
}

func validateScale(o interact.Options) error {
	lo, hi := o.MinScale, o.MaxScale
	if lo == 0 {
		lo = interact.DefaultMinScale
	}
	if hi == 0 {
		hi = interact.DefaultMaxScale
	}
	return errors.ValidateScaleRange(lo, hi)
}

// interactOptions hit-tests with the binder's resolved radii.
func (e *Engine) interactOptions() interact.Options {
	o := e.opts.Interact
	if o.HitRadius == nil {
		o.HitRadius = func(i int) float64 {
			r := e.binder.Radius(i)
			if r <= 0 {
				return interact.DefaultHitRadius
			}
			return r
		}
	}
	if o.Label == nil && e.opts.Render.NodeLabel != nil {
		o.Label = e.opts.Render.NodeLabel
	}
	return o
}

// Mount binds the surface, draws the first frame (deferred while the
// surface is detached) and starts the scheduler.
func (e *Engine) Mount(s render.Surface) error {
	e.mu.Lock()
	if e.mounted {
		e.mu.Unlock()
		return errors.New(errors.ErrCodeInvalidInput, "engine already mounted")
	}
	now := e.clock()
	e.surface = s
	e.mounted = true
	e.mountedAt = now
	err := e.binder.Mount(e.sim, s, now)
	e.log.Debug("mounted", "nodes", e.sim.Len(), "links", len(e.sim.Springs()), "pending", e.binder.Pending())
	e.mu.Unlock()

	e.sched.Start(e.Frame)
	return err
}

// Frame is the animation-frame callback: one solver step, then a redraw.
// It reports whether more frames are needed, which is while the solver is
// active, the entry animation runs, or a frame is still pending.
func (e *Engine) Frame() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.mounted {
		return false
	}
	now := e.clock()
	ticked := e.sim.Step()
	animating := e.binder.Animating(now)
	if ticked || animating || e.binder.Pending() {
		if err := e.binder.Update(now, e.ctl.Transform(), e.ctl.Tooltip()); err != nil {
			e.log.Warn("draw failed", "err", err)
		}
		e.frames++
	}
	return e.sim.Active() || animating || e.binder.Pending()
}

// Dispatch routes a pointer event to the controller. Events that change
// the picture are drawn immediately; a drag that reheats the solver wakes
// the scheduler. Dispatch on an unmounted engine does nothing.
func (e *Engine) Dispatch(ev interact.Event) interact.Result {
	e.mu.Lock()
	if !e.mounted {
		e.mu.Unlock()
		return interact.Result{}
	}
	res := e.ctl.Handle(ev)
	if res.Redraw {
		if err := e.binder.Update(e.clock(), e.ctl.Transform(), e.ctl.Tooltip()); err != nil {
			e.log.Warn("draw failed", "err", err)
		}
	}
	e.mu.Unlock()

	if res.Reheated {
		e.sched.Wake()
	}
	return res
}

// Replace swaps in new graph data. Nodes whose id survives keep their
// current position unless the new data fixes one; the entry animation is
// not restarted. Data equal to the current graph is ignored. On error the
// engine keeps the old graph.
func (e *Engine) Replace(g graph.Graph) error {
	e.mu.Lock()
	if g.Hash() == e.graph.Hash() {
		e.mu.Unlock()
		return nil
	}
	owned := g.Clone()
	for i := range owned.Nodes {
		n := &owned.Nodes[i]
		if n.X != nil || n.Y != nil {
			continue
		}
		if x, y, ok := e.sim.Position(n.ID); ok {
			n.X, n.Y = &x, &y
		}
	}
	sim, err := force.New(owned, e.opts.Force)
	if err != nil {
		e.mu.Unlock()
		return err
	}

	e.graph = g.Clone()
	e.sim = sim
	e.ctl.Rebind(sim)
	if e.mounted {
		err = e.binder.Mount(sim, e.surface, e.mountedAt)
		if uerr := e.binder.Update(e.clock(), e.ctl.Transform(), e.ctl.Tooltip()); err == nil {
			err = uerr
		}
	}
	e.log.Debug("replaced graph", "nodes", sim.Len(), "links", len(sim.Springs()))
	mounted := e.mounted
	e.mu.Unlock()

	if mounted {
		e.sched.Wake()
	}
	return err
}

// Unmount stops the scheduler, releases every drag, hides the tooltip and
// detaches the surface. Later frames and events are ignored. It must not
// be called from a function passed to Post.
func (e *Engine) Unmount() {
	e.sched.Stop()

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.mounted {
		return
	}
	e.ctl.Reset()
	e.binder.Unmount()
	e.mounted = false
	e.surface = nil
	e.log.Debug("unmounted", "frames", e.frames, "ticks", e.sim.Ticks())
}

// Post runs fn on the scheduler's frame goroutine.
func (e *Engine) Post(fn func()) { e.sched.Post(fn) }

// Reheat restarts the solver at alpha (or at least its current value).
func (e *Engine) Reheat(alpha float64) {
	e.mu.Lock()
	e.sim.Reheat(alpha, e.sim.AlphaTarget())
	e.mu.Unlock()
	e.sched.Wake()
}

// ResetView returns the zoom transform to identity and redraws.
func (e *Engine) ResetView() {
	e.SetTransform(interact.Identity)
}

// SetTransform replaces the zoom transform (scale clamped) and redraws.
func (e *Engine) SetTransform(t interact.Transform) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.SetTransform(t)
	if e.mounted {
		if err := e.binder.Update(e.clock(), e.ctl.Transform(), e.ctl.Tooltip()); err != nil {
			e.log.Warn("draw failed", "err", err)
		}
	}
}

// Zoom scales around the screen point (px, py) and redraws.
func (e *Engine) Zoom(px, py, factor float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctl.ZoomBy(px, py, factor)
	if e.mounted {
		if err := e.binder.Update(e.clock(), e.ctl.Transform(), e.ctl.Tooltip()); err != nil {
			e.log.Warn("draw failed", "err", err)
		}
	}
}

// Redraw draws the current state again. Hosts call it when a detached
// surface attaches while the solver is idle, so the pending frame is not
// left waiting for the next tick.
func (e *Engine) Redraw() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.mounted {
		return
	}
	if err := e.binder.Update(e.clock(), e.ctl.Transform(), e.ctl.Tooltip()); err != nil {
		e.log.Warn("draw failed", "err", err)
	}
}

// Snapshot returns a copy of the current frame.
func (e *Engine) Snapshot() *render.Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.binder.Frame().Clone()
}

// Layout returns the current positions as a serializable layout.
func (e *Engine) Layout() graph.Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, err := render.Snapshot(e.sim, e.binder.Options())
	if err != nil {
		return e.binder.Frame().Layout()
	}
	return f.Layout()
}

// Stats describes the engine state for status lines.
type Stats struct {
	Nodes     int     `json:"nodes"`
	Links     int     `json:"links"`
	Ticks     int     `json:"ticks"`
	Frames    int     `json:"frames"`
	Alpha     float64 `json:"alpha"`
	Active    bool    `json:"active"`
	Dragging  bool    `json:"dragging"`
	Scale     float64 `json:"scale"`
	Hovered   string  `json:"hovered,omitempty"`
	Converged bool    `json:"converged"`
}

// Stats returns a consistent snapshot of counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	hovered, _ := e.ctl.Hovered()
	return Stats{
		Nodes:     e.sim.Len(),
		Links:     len(e.sim.Springs()),
		Ticks:     e.sim.Ticks(),
		Frames:    e.frames,
		Alpha:     e.sim.Alpha(),
		Active:    e.sim.Active(),
		Dragging:  e.ctl.Dragging(),
		Scale:     e.ctl.Transform().K,
		Hovered:   hovered,
		Converged: e.sim.Converged(),
	}
}

// Mounted reports whether a surface is bound.
func (e *Engine) Mounted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mounted
}

// Graph returns a copy of the current input data.
func (e *Engine) Graph() graph.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Clone()
}

// Simulation exposes the solver for hosts that drive it directly. Callers
// must not use it concurrently with Frame or Dispatch.
func (e *Engine) Simulation() *force.Simulation { return e.sim }

// Controller exposes the interaction controller under the same rule.
func (e *Engine) Controller() *interact.Controller { return e.ctl }
