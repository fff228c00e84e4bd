package render

import (
	"math"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interact"
)

// Circle is the drawing primitive for one node. Coordinates are in
// simulation space; surfaces apply Frame.View.
type Circle struct {
	Index       int         `json:"-"`
	ID          string      `json:"id"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	R           float64     `json:"r"`
	Fill        string      `json:"fill"`
	Stroke      string      `json:"stroke,omitempty"`
	StrokeWidth float64     `json:"stroke_width,omitempty"`
	Label       string      `json:"label,omitempty"`
	Group       graph.Group `json:"group,omitempty"`
	Pinned      bool        `json:"pinned,omitempty"`
}

// Line is the drawing primitive for one link.
type Line struct {
	Index   int     `json:"-"`
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	Stroke  string  `json:"stroke"`
	Width   float64 `json:"width"`
	Opacity float64 `json:"opacity"`
}

// Frame is one complete picture: links below nodes, then the tooltip.
type Frame struct {
	Width      float64            `json:"width"`
	Height     float64            `json:"height"`
	Theme      Theme              `json:"theme"`
	View       interact.Transform `json:"view"`
	Lines      []Line             `json:"lines"`
	Circles    []Circle           `json:"circles"`
	Tooltip    interact.Tooltip   `json:"tooltip"`
	ShowLabels bool               `json:"show_labels,omitempty"`

	Tick      int     `json:"tick"`
	Alpha     float64 `json:"alpha"`
	Converged bool    `json:"converged,omitempty"`
}

// Clone returns a deep copy safe to hand to another goroutine.
func (f *Frame) Clone() *Frame {
	c := *f
	c.Lines = append([]Line(nil), f.Lines...)
	c.Circles = append([]Circle(nil), f.Circles...)
	return &c
}

// Empty reports whether the frame has no primitives.
func (f *Frame) Empty() bool { return len(f.Circles) == 0 && len(f.Lines) == 0 }

// Bounds returns the simulation-space bounding box of all circles, or the
// frame rectangle when there are none.
func (f *Frame) Bounds() (x0, y0, x1, y1 float64) {
	if len(f.Circles) == 0 {
		return 0, 0, f.Width, f.Height
	}
	x0, y0 = math.Inf(1), math.Inf(1)
	x1, y1 = math.Inf(-1), math.Inf(-1)
	for _, c := range f.Circles {
		x0 = min(x0, c.X-c.R)
		y0 = min(y0, c.Y-c.R)
		x1 = max(x1, c.X+c.R)
		y1 = max(y1, c.Y+c.R)
	}
	return x0, y0, x1, y1
}

// Fit sets View so every circle is visible with pad pixels of margin,
// never zooming beyond the identity scale.
func (f *Frame) Fit(pad float64) {
	x0, y0, x1, y1 := f.Bounds()
	f.View = interact.Fit(x0, y0, x1, y1, f.Width, f.Height, pad, interact.DefaultMinScale, 1)
}

// Layout converts the frame to its serializable form.
func (f *Frame) Layout() graph.Layout {
	l := graph.Layout{
		Width:     f.Width,
		Height:    f.Height,
		Theme:     f.Theme.Name,
		Alpha:     f.Alpha,
		Ticks:     f.Tick,
		Converged: f.Converged,
		Nodes:     make([]graph.PlacedNode, len(f.Circles)),
		Links:     make([]graph.PlacedLink, len(f.Lines)),
	}
	for i, c := range f.Circles {
		l.Nodes[i] = graph.PlacedNode{
			ID: c.ID, Label: c.Label, Group: c.Group,
			X: c.X, Y: c.Y, Radius: c.R, Color: c.Fill, Pinned: c.Pinned,
		}
	}
	for i, ln := range f.Lines {
		l.Links[i] = graph.PlacedLink{
			Source: ln.Source, Target: ln.Target,
			X1: ln.X1, Y1: ln.Y1, X2: ln.X2, Y2: ln.Y2,
			Width: ln.Width, Color: ln.Stroke,
		}
	}
	return l
}

// FromLayout rebuilds a frame from a serialized layout. Missing colors
// fall back to the theme and Category10.
func FromLayout(l graph.Layout) *Frame {
	theme, err := ThemeByName(l.Theme)
	if err != nil {
		theme = Light
	}
	colors := NewOrdinal(Category10)
	f := &Frame{
		Width:     l.Width,
		Height:    l.Height,
		Theme:     theme,
		View:      interact.Identity,
		Tick:      l.Ticks,
		Alpha:     l.Alpha,
		Converged: l.Converged,
		Circles:   make([]Circle, len(l.Nodes)),
		Lines:     make([]Line, len(l.Links)),
	}
	for i, n := range l.Nodes {
		fill := n.Color
		if fill == "" {
			fill = colors.Color(n.Group)
		}
		f.Circles[i] = Circle{
			Index: i, ID: n.ID, X: n.X, Y: n.Y, R: n.Radius,
			Fill: fill, Stroke: theme.NodeStroke, StrokeWidth: DefaultNodeStrokeWidth,
			Label: n.Label, Group: n.Group, Pinned: n.Pinned,
		}
	}
	for i, ln := range l.Links {
		stroke := ln.Color
		if stroke == "" {
			stroke = theme.LinkStroke
		}
		f.Lines[i] = Line{
			Index: i, Source: ln.Source, Target: ln.Target,
			X1: ln.X1, Y1: ln.Y1, X2: ln.X2, Y2: ln.Y2,
			Stroke: stroke, Width: ln.Width, Opacity: DefaultLinkOpacity,
		}
	}
	return f
}
