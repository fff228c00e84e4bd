package sink

import (
	"bytes"
	"fmt"
	"html"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/forcegraph/pkg/render"
)

const nodeInteractionCSS = `
    .node circle { transition: stroke-width 0.2s ease; }
    .node:hover circle { stroke-width: 3; }
    .node text { pointer-events: none; }`

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title       string
	transparent bool
	tooltip     bool
	css         bool
}

// WithTitle adds a document title.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithTransparent omits the background rectangle.
func WithTransparent() SVGOption { return func(r *svgRenderer) { r.transparent = true } }

// WithTooltip draws the frame's tooltip overlay when it is visible.
func WithTooltip() SVGOption { return func(r *svgRenderer) { r.tooltip = true } }

// WithHoverCSS embeds a small stylesheet that highlights nodes on hover.
func WithHoverCSS() SVGOption { return func(r *svgRenderer) { r.css = true } }

// RenderSVG draws the frame as a standalone SVG document. Coordinates are
// mapped through the frame's view and rounded to whole pixels. Each node
// carries a <title> so browsers show its label on hover.
func RenderSVG(f *render.Frame, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	w, h := px(f.Width), px(f.Height)
	canvas := svg.New(&buf)
	canvas.Start(w, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, w, h))
	if r.title != "" {
		canvas.Title(r.title)
	}
	if r.css {
		canvas.Style("text/css", nodeInteractionCSS)
	}
	if !r.transparent {
		canvas.Rect(0, 0, w, h, "fill="+attr(f.Theme.Background))
	}

	k := f.View.K
	canvas.Group(`class="links"`)
	for _, ln := range f.Lines {
		x1, y1 := f.View.Apply(ln.X1, ln.Y1)
		x2, y2 := f.View.Apply(ln.X2, ln.Y2)
		canvas.Line(px(x1), px(y1), px(x2), px(y2),
			"stroke="+attr(ln.Stroke),
			fmt.Sprintf(`stroke-width="%.2f"`, ln.Width*k),
			fmt.Sprintf(`stroke-opacity="%.2f"`, ln.Opacity))
	}
	canvas.Gend()

	canvas.Group(`class="nodes"`)
	for _, c := range f.Circles {
		x, y := f.View.Apply(c.X, c.Y)
		canvas.Group(`class="node"`, "id="+attr("node-"+c.ID))
		canvas.Circle(px(x), px(y), radius(c.R*k),
			"fill="+attr(c.Fill),
			"stroke="+attr(c.Stroke),
			fmt.Sprintf(`stroke-width="%.2f"`, c.StrokeWidth))
		if c.Label != "" {
			canvas.Title(c.Label)
		}
		canvas.Gend()
	}
	canvas.Gend()

	if f.ShowLabels {
		canvas.Group(`class="labels"`, `font-family="sans-serif"`, `font-size="10"`, "fill="+attr(f.Theme.Text))
		for _, c := range f.Circles {
			if c.Label == "" {
				continue
			}
			x, y := f.View.Apply(c.X, c.Y)
			canvas.Text(px(x+c.R*k+2), px(y+3), c.Label)
		}
		canvas.Gend()
	}

	if r.tooltip && f.Tooltip.Visible {
		renderTooltip(canvas, f)
	}

	canvas.End()
	return buf.Bytes()
}

func renderTooltip(canvas *svg.SVG, f *render.Frame) {
	x, y := px(f.Tooltip.X+10), px(f.Tooltip.Y-28)
	w := 7*len(f.Tooltip.Text) + 12
	canvas.Group(`class="tooltip"`)
	canvas.Roundrect(x, y, w, 20, 4, 4,
		"fill="+attr(f.Theme.TooltipBG),
		"stroke="+attr(f.Theme.LinkStroke))
	canvas.Text(x+6, y+14, f.Tooltip.Text,
		`font-family="sans-serif"`, `font-size="12"`, "fill="+attr(f.Theme.Text))
	canvas.Gend()
}

func px(v float64) int { return int(math.Round(v)) }

// radius rounds r but keeps visible circles at least one pixel wide.
func radius(r float64) int {
	if r <= 0 {
		return 0
	}
	return max(1, px(r))
}

func attr(v string) string { return `"` + html.EscapeString(v) + `"` }
