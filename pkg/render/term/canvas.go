// Package term draws render frames as colored terminal cells.
//
// A [Canvas] is a [render.Surface] whose pixel space is the frame's
// width and height scaled onto a grid of cols x rows cells. It is detached
// until it learns the terminal size, so frames produced before the first
// resize are deferred by the binder rather than drawn into a zero grid.
package term

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/forcegraph/pkg/render"
)

// Glyphs used for primitives.
const (
	glyphNode   = '●'
	glyphFill   = '█'
	glyphPinned = '◆'
	glyphLink   = '·'
)

type cell struct {
	ch rune
	fg string
	bg string
}

// Canvas rasterizes frames into a cell grid.
type Canvas struct {
	cols, rows int
	grid       []cell
	out        string
	renderer   *lipgloss.Renderer
	labels     *bool
}

// NewCanvas returns a canvas of the given size. A zero size leaves it
// detached until Resize.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{renderer: lipgloss.DefaultRenderer()}
	c.Resize(cols, rows)
	return c
}

// WithRenderer sets the lipgloss renderer used for colors, for example
// one bound to an SSH session or io.Discard in tests.
func (c *Canvas) WithRenderer(r *lipgloss.Renderer) *Canvas {
	c.renderer = r
	return c
}

// SetLabels overrides whether labels are drawn. Until it is called the
// frame's ShowLabels decides.
func (c *Canvas) SetLabels(show bool) { c.labels = &show }

// Resize sets the grid size. Non-positive sizes detach the canvas.
func (c *Canvas) Resize(cols, rows int) {
	c.cols, c.rows = max(0, cols), max(0, rows)
	c.grid = make([]cell, c.cols*c.rows)
}

// Size returns the grid size in cells.
func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

// Attached reports whether the canvas has a drawable size.
func (c *Canvas) Attached() bool { return c.cols > 0 && c.rows > 0 }

// ScreenSize returns the pixel size to give the frame so one pixel maps to
// a fixed fraction of a cell. Terminal cells are about twice as tall as
// wide, so each cell covers cellW x 2*cellW pixels.
func (c *Canvas) ScreenSize(cellW float64) (w, h float64) {
	return float64(c.cols) * cellW, float64(c.rows) * 2 * cellW
}

// ToScreen converts a cell position to frame pixel coordinates at the
// center of the cell.
func (c *Canvas) ToScreen(f *render.Frame, col, row int) (x, y float64) {
	if !c.Attached() {
		return 0, 0
	}
	return (float64(col) + 0.5) * f.Width / float64(c.cols),
		(float64(row) + 0.5) * f.Height / float64(c.rows)
}

// Draw rasterizes f. Links are drawn first, nodes on top, then labels and
// the tooltip.
func (c *Canvas) Draw(f *render.Frame) error {
	if !c.Attached() || f.Width <= 0 || f.Height <= 0 {
		return nil
	}
	for i := range c.grid {
		c.grid[i] = cell{ch: ' ', bg: f.Theme.Background}
	}
	sx := float64(c.cols) / f.Width
	sy := float64(c.rows) / f.Height
	toCell := func(x, y float64) (float64, float64) {
		px, py := f.View.Apply(x, y)
		return px * sx, py * sy
	}

	for _, ln := range f.Lines {
		if ln.Opacity <= 0 {
			continue
		}
		x1, y1 := toCell(ln.X1, ln.Y1)
		x2, y2 := toCell(ln.X2, ln.Y2)
		x1, y1, x2, y2, ok := clip(x1, y1, x2, y2, float64(c.cols), float64(c.rows))
		if !ok {
			continue
		}
		c.line(int(math.Floor(x1)), int(math.Floor(y1)), int(math.Floor(x2)), int(math.Floor(y2)), ln.Stroke)
	}

	for _, n := range f.Circles {
		if n.R <= 0 {
			continue
		}
		cx, cy := toCell(n.X, n.Y)
		rx, ry := n.R*f.View.K*sx, n.R*f.View.K*sy
		c.disk(cx, cy, rx, ry, n.Fill)
		g := glyphNode
		if n.Pinned {
			g = glyphPinned
		}
		c.set(int(math.Floor(cx)), int(math.Floor(cy)), g, n.Fill)
	}

	showLabels := f.ShowLabels
	if c.labels != nil {
		showLabels = *c.labels
	}
	if showLabels {
		for _, n := range f.Circles {
			if n.Label == "" || n.R <= 0 {
				continue
			}
			cx, cy := toCell(n.X, n.Y)
			col := int(math.Floor(cx+n.R*f.View.K*sx)) + 2
			c.text(col, int(math.Floor(cy)), n.Label, f.Theme.Text, "")
		}
	}

	if f.Tooltip.Visible && f.Tooltip.Text != "" {
		col := int(math.Floor(f.Tooltip.X*sx)) + 2
		row := int(math.Floor(f.Tooltip.Y*sy)) - 1
		text := " " + f.Tooltip.Text + " "
		col = min(col, c.cols-len([]rune(text)))
		c.text(max(0, col), max(0, row), text, f.Theme.Text, f.Theme.TooltipBG)
	}

	c.out = c.compose()
	return nil
}

func (c *Canvas) set(col, row int, ch rune, fg string) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	cl := &c.grid[row*c.cols+col]
	cl.ch, cl.fg = ch, fg
}

func (c *Canvas) text(col, row int, s, fg, bg string) {
	if row < 0 || row >= c.rows {
		return
	}
	for _, r := range s {
		if col >= c.cols {
			return
		}
		if col >= 0 {
			cl := &c.grid[row*c.cols+col]
			cl.ch, cl.fg = r, fg
			if bg != "" {
				cl.bg = bg
			}
		}
		col++
	}
}

// line draws a Bresenham segment between two cells.
func (c *Canvas) line(x0, y0, x1, y1 int, fg string) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	stepX, stepY := 1, 1
	if x0 > x1 {
		stepX = -1
	}
	if y0 > y1 {
		stepY = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0, glyphLink, fg)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += stepX
		}
		if e2 <= dx {
			e += dx
			y0 += stepY
		}
	}
}

// clip trims a segment to the box [0,w]x[0,h] (Liang-Barsky).
func clip(x1, y1, x2, y2, w, h float64) (float64, float64, float64, float64, bool) {
	if v := x1 + y1 + x2 + y2; math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, 0, 0, 0, false
	}
	dx, dy := x2-x1, y2-y1
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{{-dx, x1}, {dx, w - x1}, {-dy, y1}, {dy, h - y1}} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = max(t0, r)
		} else {
			t1 = min(t1, r)
		}
		if t0 > t1 {
			return 0, 0, 0, 0, false
		}
	}
	return x1 + t0*dx, y1 + t0*dy, x1 + t1*dx, y1 + t1*dy, true
}

// disk fills the cells whose centers fall inside the ellipse.
func (c *Canvas) disk(cx, cy, rx, ry float64, fg string) {
	if (rx < 1 && ry < 1) || math.IsNaN(cx+cy+rx+ry) {
		return
	}
	r0, r1 := max(0, math.Floor(cy-ry)), min(float64(c.rows-1), math.Ceil(cy+ry))
	c0, c1 := max(0, math.Floor(cx-rx)), min(float64(c.cols-1), math.Ceil(cx+rx))
	for row := int(r0); row <= int(r1); row++ {
		for col := int(c0); col <= int(c1); col++ {
			dx := (float64(col) + 0.5 - cx) / rx
			dy := (float64(row) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1 {
				c.set(col, row, glyphFill, fg)
			}
		}
	}
}

// compose renders the grid, batching runs of equal colors into one style.
func (c *Canvas) compose() string {
	var b strings.Builder
	for row := range c.rows {
		start := row * c.cols
		for col := 0; col < c.cols; {
			run := c.grid[start+col]
			var seg strings.Builder
			for col < c.cols {
				cl := c.grid[start+col]
				if cl.fg != run.fg || cl.bg != run.bg {
					break
				}
				seg.WriteRune(cl.ch)
				col++
			}
			style := c.renderer.NewStyle()
			if run.fg != "" {
				style = style.Foreground(lipgloss.Color(run.fg))
			}
			if run.bg != "" {
				style = style.Background(lipgloss.Color(run.bg))
			}
			b.WriteString(style.Render(seg.String()))
		}
		if row < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// String returns the last drawn frame with color escapes.
func (c *Canvas) String() string { return c.out }

// Plain returns the last drawn frame without colors, one line per row.
func (c *Canvas) Plain() string {
	var b strings.Builder
	for row := range c.rows {
		for col := range c.cols {
			ch := c.grid[row*c.cols+col].ch
			if ch == 0 {
				ch = ' '
			}
			b.WriteRune(ch)
		}
		if row < c.rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
