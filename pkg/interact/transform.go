package interact

import "math"

// Transform maps simulation coordinates to screen coordinates:
// screen = world*K + (X, Y).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the transform with unit scale and no translation.
var Identity = Transform{K: 1}

// Apply converts a simulation point to screen space.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.K + t.X, y*t.K + t.Y
}

// Invert converts a screen point to simulation space.
func (t Transform) Invert(sx, sy float64) (float64, float64) {
	return (sx - t.X) / t.K, (sy - t.Y) / t.K
}

// Translate shifts the transform by a screen-space delta.
func (t Transform) Translate(dx, dy float64) Transform {
	t.X += dx
	t.Y += dy
	return t
}

// ZoomAt scales by factor around the screen point (px, py), keeping the
// simulation point under it fixed. The resulting scale is clamped to
// [minK, maxK].
func (t Transform) ZoomAt(px, py, factor, minK, maxK float64) Transform {
	k := clamp(t.K*factor, minK, maxK)
	wx, wy := t.Invert(px, py)
	return Transform{K: k, X: px - wx*k, Y: py - wy*k}
}

// Clamp returns t with its scale clamped to [minK, maxK], preserving the
// screen position of the origin.
func (t Transform) Clamp(minK, maxK float64) Transform {
	t.K = clamp(t.K, minK, maxK)
	return t
}

// Fit returns a transform that shows the box [x0,x1]x[y0,y1] centered in a
// w by h viewport with pad screen pixels on each side, scale clamped.
func Fit(x0, y0, x1, y1, w, h, pad, minK, maxK float64) Transform {
	bw, bh := x1-x0, y1-y0
	if bw <= 0 || bh <= 0 {
		return Identity
	}
	k := math.Min((w-2*pad)/bw, (h-2*pad)/bh)
	k = clamp(k, minK, maxK)
	cx, cy := (x0+x1)/2, (y0+y1)/2
	return Transform{K: k, X: w/2 - cx*k, Y: h/2 - cy*k}
}

// WheelFactor converts a wheel delta to a zoom factor, 2^(-delta*sensitivity).
func WheelFactor(deltaY, sensitivity float64) float64 {
	return math.Pow(2, -deltaY*sensitivity)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
