package interact

import (
	"context"
	"math"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
)

// Defaults for Options.
const (
	DefaultMinScale         = 0.1
	DefaultMaxScale         = 10.0
	DefaultReheatAlpha      = 0.3
	DefaultClickTolerance   = 3.0
	DefaultLinkTolerance    = 4.0
	DefaultHitRadius        = 8.0
	DefaultWheelSensitivity = 0.002
)

// Options configures a Controller.
type Options struct {
	Drag    bool
	Zoom    bool
	Tooltip bool

	MinScale, MaxScale float64
	// ReheatAlpha is both the alpha floor and the alpha target while any
	// node is being dragged.
	ReheatAlpha float64
	// ClickTolerance is the screen distance a press may travel and still
	// count as a click.
	ClickTolerance float64
	// LinkTolerance is the screen distance within which a link is hit.
	LinkTolerance    float64
	WheelSensitivity float64

	// HitRadius returns the simulation-space radius of node i.
	HitRadius func(i int) float64
	// Label returns tooltip text for a node.
	Label graph.NodeString
}

// DefaultOptions enables drag, zoom and tooltip with default tuning.
func DefaultOptions() Options {
	return Options{Drag: true, Zoom: true, Tooltip: true}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.MinScale <= 0 {
		o.MinScale = DefaultMinScale
	}
	if o.MaxScale <= 0 {
		o.MaxScale = DefaultMaxScale
	}
	if o.ReheatAlpha <= 0 {
		o.ReheatAlpha = DefaultReheatAlpha
	}
	if o.ClickTolerance <= 0 {
		o.ClickTolerance = DefaultClickTolerance
	}
	if o.LinkTolerance <= 0 {
		o.LinkTolerance = DefaultLinkTolerance
	}
	if o.WheelSensitivity <= 0 {
		o.WheelSensitivity = DefaultWheelSensitivity
	}
	if o.HitRadius == nil {
		o.HitRadius = func(int) float64 { return DefaultHitRadius }
	}
	if o.Label == nil {
		o.Label = func(n *graph.Node) string { return n.DisplayLabel() }
	}
	return o
}

// Tooltip is the hover overlay in screen coordinates.
type Tooltip struct {
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Text    string  `json:"text,omitempty"`
	NodeID  string  `json:"node,omitempty"`
}

// Result reports what a handled event changed.
type Result struct {
	// Redraw is set when positions, the transform or the tooltip changed.
	Redraw bool
	// Reheated is set when a drag raised alpha; frame-driven hosts must
	// resume scheduling.
	Reheated bool
}

type mode int

const (
	modeNone mode = iota
	modeDrag
	modePan
)

// press tracks one pointer between down and up.
type press struct {
	mode           mode
	node           int
	link           int
	startX, startY float64
	lastX, lastY   float64
	moved          bool
}

// Controller is the interaction state machine. Each node is Free or
// Dragging; the canvas is either idle or panning. Handle is the single
// entry point and is not safe for concurrent use.
type Controller struct {
	sim  *force.Simulation
	cb   Callbacks
	opts Options

	view    Transform
	presses map[int]*press
	drags   int
	hover   int
	tooltip Tooltip
}

// NewController binds a controller to sim. A nil cb disables notifications.
func NewController(sim *force.Simulation, cb Callbacks, opts Options) *Controller {
	if cb == nil {
		cb = CallbackFuncs{}
	}
	return &Controller{
		sim:     sim,
		cb:      cb,
		opts:    opts.withDefaults(),
		view:    Identity,
		presses: make(map[int]*press),
		hover:   -1,
	}
}

// Handle applies one event and reports what changed.
func (c *Controller) Handle(ev Event) Result {
	switch ev.Kind {
	case PointerDown:
		return c.down(ev)
	case PointerMove:
		return c.move(ev)
	case PointerUp:
		return c.up(ev)
	case Wheel:
		return c.wheel(ev)
	case PointerLeave:
		return c.leave(ev)
	}
	return Result{}
}

func (c *Controller) down(ev Event) Result {
	if ev.Button != ButtonLeft {
		return Result{}
	}
	// A pointer can only hold one press; a missed release ends here.
	_, res := c.release(ev.Pointer)

	node := c.NodeAt(ev.X, ev.Y)
	p := &press{node: node, link: -1, startX: ev.X, startY: ev.Y, lastX: ev.X, lastY: ev.Y}
	if node < 0 {
		p.link = c.LinkAt(ev.X, ev.Y)
	}

	switch {
	case node >= 0 && c.opts.Drag:
		p.mode = modeDrag
		b := c.sim.Body(node)
		b.Pin(b.X, b.Y)
		if c.drags == 0 {
			c.sim.Reheat(c.opts.ReheatAlpha, c.opts.ReheatAlpha)
			res.Reheated = true
		}
		c.drags++
		observability.Interaction().OnDragStart(context.Background(), b.ID)
		res.Redraw = true
	case node < 0 && c.opts.Zoom:
		p.mode = modePan
	}
	c.presses[ev.Pointer] = p
	return res
}

func (c *Controller) move(ev Event) Result {
	p, ok := c.presses[ev.Pointer]
	if !ok {
		return c.hoverAt(ev)
	}
	if !p.moved && math.Hypot(ev.X-p.startX, ev.Y-p.startY) > c.opts.ClickTolerance {
		p.moved = true
	}
	var res Result
	switch p.mode {
	case modeDrag:
		wx, wy := c.view.Invert(ev.X, ev.Y)
		b := c.sim.Body(p.node)
		b.Pin(wx, wy)
		b.X, b.Y = wx, wy
		res.Redraw = true
		if c.tooltip.Visible && c.tooltip.NodeID == b.ID {
			c.tooltip.X, c.tooltip.Y = ev.X, ev.Y
		}
	case modePan:
		c.view = c.view.Translate(ev.X-p.lastX, ev.Y-p.lastY)
		res.Redraw = true
	}
	p.lastX, p.lastY = ev.X, ev.Y
	return res
}

func (c *Controller) up(ev Event) Result {
	p, res := c.release(ev.Pointer)
	if p == nil || p.moved {
		return res
	}
	switch {
	case p.node >= 0:
		c.cb.OnNodeClick(c.sim.Node(p.node), ev)
	case p.link >= 0:
		c.cb.OnLinkClick(c.sim.Link(p.link), ev)
	}
	return res
}

// release ends the open press of a pointer, unpinning a dragged node.
// It returns nil when the pointer had no press.
func (c *Controller) release(pointer int) (*press, Result) {
	p, ok := c.presses[pointer]
	if !ok {
		return nil, Result{}
	}
	delete(c.presses, pointer)

	var res Result
	if p.mode == modeDrag {
		b := c.sim.Body(p.node)
		b.Unpin()
		c.drags--
		if c.drags == 0 {
			c.sim.SetAlphaTarget(0)
		}
		observability.Interaction().OnDragEnd(context.Background(), b.ID)
		res.Redraw = true
	}
	return p, res
}

func (c *Controller) wheel(ev Event) Result {
	if !c.opts.Zoom || ev.DeltaY == 0 {
		return Result{}
	}
	f := WheelFactor(ev.DeltaY, c.opts.WheelSensitivity)
	next := c.view.ZoomAt(ev.X, ev.Y, f, c.opts.MinScale, c.opts.MaxScale)
	if next.K == c.view.K {
		return Result{}
	}
	c.view = next
	observability.Interaction().OnZoom(context.Background(), c.view.K)
	return Result{Redraw: true}
}

// leave ends the pointer's press without a click and drops hover state.
func (c *Controller) leave(ev Event) Result {
	_, res := c.release(ev.Pointer)
	res.Redraw = res.Redraw || c.tooltip.Visible
	if c.hover >= 0 {
		c.hover = -1
		c.cb.OnNodeHover(nil, ev)
	}
	c.tooltip = Tooltip{}
	return res
}

func (c *Controller) hoverAt(ev Event) Result {
	i := c.NodeAt(ev.X, ev.Y)
	if i == c.hover {
		if i >= 0 && c.tooltip.Visible {
			c.tooltip.X, c.tooltip.Y = ev.X, ev.Y
			return Result{Redraw: true}
		}
		return Result{}
	}
	c.hover = i
	if i < 0 {
		c.cb.OnNodeHover(nil, ev)
		visible := c.tooltip.Visible
		c.tooltip = Tooltip{}
		return Result{Redraw: visible}
	}
	n := c.sim.Node(i)
	c.cb.OnNodeHover(n, ev)
	if !c.opts.Tooltip {
		return Result{}
	}
	c.tooltip = Tooltip{Visible: true, X: ev.X, Y: ev.Y, Text: c.opts.Label(n), NodeID: n.ID}
	return Result{Redraw: true}
}

// =============================================================================
// Queries
// =============================================================================

// NodeAt returns the topmost node under the screen point, or -1.
func (c *Controller) NodeAt(sx, sy float64) int {
	wx, wy := c.view.Invert(sx, sy)
	bodies := c.sim.Bodies()
	for i := len(bodies) - 1; i >= 0; i-- {
		r := c.opts.HitRadius(i)
		dx, dy := bodies[i].X-wx, bodies[i].Y-wy
		if dx*dx+dy*dy <= r*r {
			return i
		}
	}
	return -1
}

// LinkAt returns the topmost link within LinkTolerance screen pixels of
// the point, or -1. Self loops are never hit.
func (c *Controller) LinkAt(sx, sy float64) int {
	wx, wy := c.view.Invert(sx, sy)
	tol := c.opts.LinkTolerance / c.view.K
	springs := c.sim.Springs()
	for i := len(springs) - 1; i >= 0; i-- {
		sp := &springs[i]
		if sp.SelfLoop() {
			continue
		}
		a, b := c.sim.Body(sp.Source), c.sim.Body(sp.Target)
		if segmentDistance(wx, wy, a.X, a.Y, b.X, b.Y) <= tol {
			return i
		}
	}
	return -1
}

// State returns the drag state of the node with the given id.
func (c *Controller) State(id string) State {
	i, ok := c.sim.Lookup(id)
	if !ok {
		return Free
	}
	for _, p := range c.presses {
		if p.mode == modeDrag && p.node == i {
			return Dragging
		}
	}
	return Free
}

// Dragging reports whether any node is being dragged.
func (c *Controller) Dragging() bool { return c.drags > 0 }

// Transform returns the current zoom/pan transform.
func (c *Controller) Transform() Transform { return c.view }

// SetTransform replaces the transform, clamping its scale.
func (c *Controller) SetTransform(t Transform) {
	c.view = t.Clamp(c.opts.MinScale, c.opts.MaxScale)
}

// ZoomBy scales around the screen point (px, py), clamped.
func (c *Controller) ZoomBy(px, py, factor float64) {
	c.view = c.view.ZoomAt(px, py, factor, c.opts.MinScale, c.opts.MaxScale)
	observability.Interaction().OnZoom(context.Background(), c.view.K)
}

// Tooltip returns the hover overlay.
func (c *Controller) Tooltip() Tooltip { return c.tooltip }

// Hovered returns the hovered node id.
func (c *Controller) Hovered() (string, bool) {
	if c.hover < 0 {
		return "", false
	}
	return c.sim.Body(c.hover).ID, true
}

// Options returns the effective options.
func (c *Controller) Options() Options { return c.opts }

// Reset releases all drags, hides the tooltip and forgets hover state.
// Dragged nodes are unpinned. The transform is kept.
func (c *Controller) Reset() {
	for _, p := range c.presses {
		if p.mode == modeDrag {
			c.sim.Body(p.node).Unpin()
		}
	}
	if c.drags > 0 {
		c.sim.SetAlphaTarget(0)
	}
	clear(c.presses)
	c.drags = 0
	c.hover = -1
	c.tooltip = Tooltip{}
}

// Rebind points the controller at a new simulation, resetting per-node
// state.
func (c *Controller) Rebind(sim *force.Simulation) {
	c.Reset()
	c.sim = sim
}

func segmentDistance(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := clamp(((px-ax)*dx+(py-ay)*dy)/l2, 0, 1)
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}
