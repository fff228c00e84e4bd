package render

import (
	"math"
	"time"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interact"
)

// Defaults for Options.
const (
	DefaultAnimationDuration = 800 * time.Millisecond
	DefaultNodeStrokeWidth   = 1.5
	DefaultLinkOpacity       = 0.6
)

// Surface receives finished frames. A detached surface is skipped and the
// frame is kept pending until the next update finds it attached.
type Surface interface {
	Attached() bool
	Draw(f *Frame) error
}

// Options controls how entities map to primitives. Every accessor is
// either a constant (graph.ConstNode and friends) or a function of the
// entity; nil selects the default.
type Options struct {
	Theme  Theme
	Scheme []string

	// NodeRadius defaults to the node's size, else graph.DefaultNodeSize.
	NodeRadius graph.NodeNumber
	// NodeColor defaults to the node's color, else the scheme color of its group.
	NodeColor       graph.NodeString
	NodeStroke      graph.NodeString
	NodeStrokeWidth float64
	NodeLabel       graph.NodeString

	// LinkColor defaults to the link's color, else the theme link stroke.
	LinkColor graph.LinkString
	// LinkWidth defaults to the square root of the link weight.
	LinkWidth   graph.LinkNumber
	LinkOpacity float64

	ShowLabels bool

	// Animate grows radii from zero and fades links in over
	// AnimationDuration after Mount.
	Animate           bool
	AnimationDuration time.Duration
	Easing            func(t float64) float64
}

// DefaultOptions returns the light theme with entry animation enabled.
func DefaultOptions() Options {
	return Options{Animate: true}.withDefaults()
}

func (o Options) withDefaults() Options {
	if o.Theme.Name == "" {
		o.Theme = Light
	}
	if len(o.Scheme) == 0 {
		o.Scheme = Category10
	}
	if o.NodeStrokeWidth == 0 {
		o.NodeStrokeWidth = DefaultNodeStrokeWidth
	}
	if o.LinkOpacity == 0 {
		o.LinkOpacity = DefaultLinkOpacity
	}
	if o.AnimationDuration == 0 {
		o.AnimationDuration = DefaultAnimationDuration
	}
	if o.Easing == nil {
		o.Easing = CubicInOut
	}
	return o
}

// Validate checks numeric ranges and theme colors.
func (o Options) Validate() error {
	if o.NodeStrokeWidth < 0 || math.IsNaN(o.NodeStrokeWidth) {
		return errors.New(errors.ErrCodeInvalidInput, "node stroke width must be non-negative, got %v", o.NodeStrokeWidth)
	}
	if o.LinkOpacity < 0 || o.LinkOpacity > 1 || math.IsNaN(o.LinkOpacity) {
		return errors.New(errors.ErrCodeInvalidInput, "link opacity must be in [0, 1], got %v", o.LinkOpacity)
	}
	if o.AnimationDuration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "animation duration must be non-negative, got %v", o.AnimationDuration)
	}
	for _, c := range []string{o.Theme.Background, o.Theme.Text, o.Theme.NodeStroke, o.Theme.LinkStroke, o.Theme.TooltipBG} {
		if err := errors.ValidateColor(c); err != nil {
			return err
		}
	}
	for _, c := range o.Scheme {
		if err := errors.ValidateColor(c); err != nil {
			return err
		}
	}
	return nil
}

// CubicInOut is the default entry easing.
func CubicInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}

// Binder keeps one Circle per node and one Line per link in sync with a
// simulation and pushes frames to a Surface.
type Binder struct {
	opts    Options
	sim     *force.Simulation
	surface Surface

	frame  Frame
	radius []float64
	start  time.Time

	mounted bool
	pending bool
}

// NewBinder validates opts and returns an unmounted binder.
func NewBinder(opts Options) (*Binder, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Binder{opts: opts}, nil
}

// Mount resolves every accessor against the simulation's data, creates the
// primitives and draws the first frame. now starts the entry animation.
func (b *Binder) Mount(sim *force.Simulation, s Surface, now time.Time) error {
	b.sim = sim
	b.surface = s
	b.start = now
	b.mounted = true
	b.pending = false
	b.build()
	return b.Update(now, interact.Identity, interact.Tooltip{})
}

func (b *Binder) build() {
	cfg := b.sim.Config()
	colors := NewOrdinal(b.opts.Scheme)
	o := b.opts

	b.frame = Frame{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Theme:      o.Theme,
		View:       interact.Identity,
		ShowLabels: o.ShowLabels,
		Circles:    make([]Circle, b.sim.Len()),
		Lines:      make([]Line, len(b.sim.Springs())),
	}
	b.radius = make([]float64, b.sim.Len())

	for i := range b.frame.Circles {
		n := b.sim.Node(i)
		r := n.SizeOr(graph.DefaultNodeSize)
		if o.NodeRadius != nil {
			r = o.NodeRadius(n)
		}
		b.radius[i] = max(0, r)

		fill := n.Color
		if o.NodeColor != nil {
			fill = o.NodeColor(n)
		}
		if fill == "" {
			fill = colors.Color(n.Group)
		}
		stroke := o.Theme.NodeStroke
		if o.NodeStroke != nil {
			stroke = o.NodeStroke(n)
		}
		label := n.DisplayLabel()
		if o.NodeLabel != nil {
			label = o.NodeLabel(n)
		}
		b.frame.Circles[i] = Circle{
			Index:       i,
			ID:          n.ID,
			Fill:        fill,
			Stroke:      stroke,
			StrokeWidth: o.NodeStrokeWidth,
			Label:       label,
			Group:       n.Group,
		}
	}

	for i := range b.frame.Lines {
		l := b.sim.Link(i)
		stroke := l.Color
		if o.LinkColor != nil {
			stroke = o.LinkColor(l)
		}
		if stroke == "" {
			stroke = o.Theme.LinkStroke
		}
		width := l.StrokeWidth()
		if o.LinkWidth != nil {
			width = o.LinkWidth(l)
		}
		b.frame.Lines[i] = Line{
			Index:  i,
			Source: l.Source,
			Target: l.Target,
			Stroke: stroke,
			Width:  max(0, width),
		}
	}
}

// progress returns the eased animation progress in [0, 1].
func (b *Binder) progress(now time.Time) float64 {
	if !b.opts.Animate || b.opts.AnimationDuration == 0 {
		return 1
	}
	t := float64(now.Sub(b.start)) / float64(b.opts.AnimationDuration)
	if t >= 1 {
		return 1
	}
	if t <= 0 {
		return b.opts.Easing(0)
	}
	return b.opts.Easing(t)
}

func (b *Binder) sync(now time.Time) {
	e := b.progress(now)
	bodies := b.sim.Bodies()
	for i := range b.frame.Circles {
		c := &b.frame.Circles[i]
		c.X, c.Y = bodies[i].X, bodies[i].Y
		c.R = b.radius[i] * e
		_, _, c.Pinned = bodies[i].Fixed()
	}
	springs := b.sim.Springs()
	for i := range b.frame.Lines {
		ln := &b.frame.Lines[i]
		s, t := &bodies[springs[i].Source], &bodies[springs[i].Target]
		ln.X1, ln.Y1, ln.X2, ln.Y2 = s.X, s.Y, t.X, t.Y
		ln.Opacity = b.opts.LinkOpacity * e
	}
	b.frame.Tick = b.sim.Ticks()
	b.frame.Alpha = b.sim.Alpha()
	b.frame.Converged = b.sim.Converged()
}

// Update refreshes every primitive from the simulation, applies the view
// and tooltip, and draws. A detached surface leaves the frame pending and
// is not an error. Updating an unmounted binder does nothing.
func (b *Binder) Update(now time.Time, view interact.Transform, tip interact.Tooltip) error {
	if !b.mounted {
		return nil
	}
	b.sync(now)
	b.frame.View = view
	b.frame.Tooltip = tip
	return b.draw()
}

func (b *Binder) draw() error {
	if b.surface == nil || !b.surface.Attached() {
		b.pending = true
		return nil
	}
	b.pending = false
	return b.surface.Draw(&b.frame)
}

// Flush draws a pending frame if the surface has become attached.
func (b *Binder) Flush() error {
	if !b.mounted || !b.pending {
		return nil
	}
	return b.draw()
}

// Unmount hides the tooltip and releases the simulation and surface.
func (b *Binder) Unmount() {
	b.frame.Tooltip = interact.Tooltip{}
	b.mounted = false
	b.pending = false
	b.sim = nil
	b.surface = nil
}

// Animating reports whether the entry animation is still running at now.
func (b *Binder) Animating(now time.Time) bool {
	return b.mounted && b.opts.Animate && now.Sub(b.start) < b.opts.AnimationDuration
}

// Pending reports whether a frame is waiting for the surface to attach.
func (b *Binder) Pending() bool { return b.pending }

// Mounted reports whether the binder is bound to a simulation.
func (b *Binder) Mounted() bool { return b.mounted }

// Radius returns the resolved, unanimated radius of node i.
func (b *Binder) Radius(i int) float64 {
	if i < 0 || i >= len(b.radius) {
		return 0
	}
	return b.radius[i]
}

// Frame returns the current frame. It is overwritten by the next Update.
func (b *Binder) Frame() *Frame { return &b.frame }

// Options returns the effective options.
func (b *Binder) Options() Options { return b.opts }

// Snapshot captures sim as a fully grown frame without a surface.
func Snapshot(sim *force.Simulation, opts Options) (*Frame, error) {
	opts.Animate = false
	b, err := NewBinder(opts)
	if err != nil {
		return nil, err
	}
	b.sim = sim
	b.build()
	b.sync(time.Time{})
	return b.frame.Clone(), nil
}
