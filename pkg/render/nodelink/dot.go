package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/render"
)

// pointsPerInch converts simulation units (treated as points) to the
// inches Graphviz uses for node sizes.
const pointsPerInch = 72.0

// Options configures DOT generation.
type Options struct {
	// Labels prints node labels inside the circles. When false nodes are
	// drawn unlabeled, as in the interactive view.
	Labels bool
	// Directed emits a digraph with arrowheads.
	Directed bool
}

// ToDOT converts a frame to Graphviz DOT with every node pinned at its
// simulated position, so neato reproduces the force layout instead of
// computing its own. Graphviz's y axis points up; positions are flipped.
func ToDOT(f *render.Frame, opts Options) string {
	kind, edgeOp := "graph", "--"
	if opts.Directed {
		kind, edgeOp = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", kind)
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", f.Theme.Background)
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  splines=false;\n")
	fmt.Fprintf(&buf, "  node [shape=circle, style=filled, fixedsize=true, fontsize=10, fontcolor=%q];\n", f.Theme.Text)
	buf.WriteString("\n")

	for _, c := range f.Circles {
		attrs := nodeAttrs(c, f.Height, opts.Labels)
		fmt.Fprintf(&buf, "  %q [%s];\n", c.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, ln := range f.Lines {
		fmt.Fprintf(&buf, "  %q %s %q [color=%q, penwidth=%s];\n",
			ln.Source, edgeOp, ln.Target, withAlpha(ln.Stroke, ln.Opacity), num(ln.Width))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(c render.Circle, height float64, labels bool) []string {
	label := ""
	if labels {
		label = c.Label
	}
	d := 2 * c.R / pointsPerInch
	return []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%s,%s!\"", num(c.X), num(height-c.Y)),
		"pin=true",
		fmt.Sprintf("width=%s", num(d)),
		fmt.Sprintf("height=%s", num(d)),
		fmt.Sprintf("fillcolor=%q", c.Fill),
		fmt.Sprintf("color=%q", c.Stroke),
		fmt.Sprintf("penwidth=%s", num(c.StrokeWidth)),
	}
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// withAlpha appends an alpha byte to a #rrggbb color.
func withAlpha(color string, opacity float64) string {
	if len(color) != 7 || opacity >= 1 {
		return color
	}
	a := int(math.Round(math.Max(0, opacity) * 255))
	return fmt.Sprintf("%s%02x", color, a)
}

// Render lays out a DOT graph with neato, honoring pinned positions, and
// writes it in the given Graphviz format.
func Render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

// RenderSVG renders a DOT graph to SVG with a zero-origin viewBox.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	svg, err := Render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(svg), nil
}

// RenderPNG renders a DOT graph to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return Render(ctx, dot, graphviz.PNG)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the output embeds like the native SVG sink.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
