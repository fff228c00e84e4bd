package sink

import (
	"bytes"
	"math"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/render"
)

// DefaultScale renders PNGs at 2x for high-DPI displays.
const DefaultScale = 2.0

// PNGOption configures PNG rendering via [RenderPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale       float64
	transparent bool
	tooltip     bool
}

// WithScale sets the pixel scale factor (default 2.0).
func WithScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// WithPNGTransparent skips the background fill.
func WithPNGTransparent() PNGOption { return func(r *pngRenderer) { r.transparent = true } }

// WithPNGTooltip draws the tooltip overlay when it is visible.
func WithPNGTooltip() PNGOption { return func(r *pngRenderer) { r.tooltip = true } }

// RenderPNG rasterizes the frame in-process.
func RenderPNG(f *render.Frame, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: DefaultScale}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || math.IsNaN(r.scale) || math.IsInf(r.scale, 0) {
		return nil, errors.New(errors.ErrCodeInvalidScale, "png scale must be positive, got %v", r.scale)
	}
	w := int(math.Ceil(f.Width * r.scale))
	h := int(math.Ceil(f.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidDimensions, "png size %dx%d is empty", w, h)
	}

	dc := gg.NewContext(w, h)
	if !r.transparent {
		setColor(dc, f.Theme.Background, 1)
		dc.Clear()
	}

	s, k := r.scale, f.View.K
	screen := func(x, y float64) (float64, float64) {
		sx, sy := f.View.Apply(x, y)
		return sx * s, sy * s
	}

	for _, ln := range f.Lines {
		x1, y1 := screen(ln.X1, ln.Y1)
		x2, y2 := screen(ln.X2, ln.Y2)
		setColor(dc, ln.Stroke, ln.Opacity)
		dc.SetLineWidth(ln.Width * k * s)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	for _, c := range f.Circles {
		if c.R <= 0 {
			continue
		}
		x, y := screen(c.X, c.Y)
		dc.DrawCircle(x, y, c.R*k*s)
		setColor(dc, c.Fill, 1)
		dc.FillPreserve()
		setColor(dc, c.Stroke, 1)
		dc.SetLineWidth(c.StrokeWidth * s)
		dc.Stroke()
	}

	dc.SetFontFace(basicfont.Face7x13)
	if f.ShowLabels {
		setColor(dc, f.Theme.Text, 1)
		for _, c := range f.Circles {
			if c.Label == "" {
				continue
			}
			x, y := screen(c.X, c.Y)
			dc.DrawStringAnchored(c.Label, x+(c.R*k+2)*s, y, 0, 0.5)
		}
	}

	if r.tooltip && f.Tooltip.Visible {
		x, y := (f.Tooltip.X+10)*s, (f.Tooltip.Y-28)*s
		tw, th := dc.MeasureString(f.Tooltip.Text)
		dc.DrawRoundedRectangle(x, y, tw+12, th+8, 4)
		setColor(dc, f.Theme.TooltipBG, 1)
		dc.FillPreserve()
		setColor(dc, f.Theme.LinkStroke, 1)
		dc.SetLineWidth(1)
		dc.Stroke()
		setColor(dc, f.Theme.Text, 1)
		dc.DrawStringAnchored(f.Tooltip.Text, x+6, y+(th+8)/2, 0, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// setColor parses a hex color (with optional alpha byte) and applies it
// scaled by opacity. Unparseable colors fall back to black.
func setColor(dc *gg.Context, hex string, opacity float64) {
	c, a := parseHex(hex)
	dc.SetRGBA(c.R, c.G, c.B, a*opacity)
}

func parseHex(hex string) (colorful.Color, float64) {
	a := 1.0
	if len(hex) == 9 {
		if v, err := strconv.ParseUint(hex[7:], 16, 8); err == nil {
			a = float64(v) / 255
		}
		hex = hex[:7]
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, a
	}
	return c, a
}
