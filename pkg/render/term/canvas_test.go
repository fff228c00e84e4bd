package term

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/forcegraph/pkg/interact"
	"github.com/matzehuels/forcegraph/pkg/render"
)

func plainCanvas(cols, rows int) *Canvas {
	return NewCanvas(cols, rows).WithRenderer(lipgloss.NewRenderer(io.Discard))
}

func frame() *render.Frame {
	return &render.Frame{
		Width: 40, Height: 20,
		Theme: render.Dark,
		View:  interact.Identity,
		Lines: []render.Line{
			{X1: 5, Y1: 10, X2: 35, Y2: 10, Stroke: "#666666", Width: 1, Opacity: 0.6},
		},
		Circles: []render.Circle{
			{ID: "a", X: 5, Y: 10, R: 0.5, Fill: "#1f77b4", Label: "a"},
			{ID: "b", X: 35, Y: 10, R: 0.5, Fill: "#ff7f0e", Label: "b", Pinned: true},
		},
	}
}

func TestCanvasDetachedUntilSized(t *testing.T) {
	c := plainCanvas(0, 0)
	if c.Attached() {
		t.Fatal("zero-size canvas should be detached")
	}
	if err := c.Draw(frame()); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	if c.String() != "" {
		t.Error("detached canvas drew output")
	}
	c.Resize(40, 20)
	if !c.Attached() {
		t.Fatal("resized canvas should be attached")
	}
}

func TestCanvasDraw(t *testing.T) {
	c := plainCanvas(40, 20)
	if err := c.Draw(frame()); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	lines := strings.Split(c.Plain(), "\n")
	if len(lines) != 20 {
		t.Fatalf("rows = %d, want 20", len(lines))
	}
	row := []rune(lines[10])
	if row[5] != glyphNode {
		t.Errorf("node a glyph = %q, want %q", row[5], glyphNode)
	}
	if row[35] != glyphPinned {
		t.Errorf("pinned node glyph = %q, want %q", row[35], glyphPinned)
	}
	if row[20] != glyphLink {
		t.Errorf("link glyph = %q, want %q", row[20], glyphLink)
	}
	if strings.TrimSpace(lines[0]) != "" {
		t.Errorf("row 0 should be empty, got %q", lines[0])
	}
	if !strings.Contains(c.String(), "●") {
		t.Error("String() missing node glyph")
	}
}

func TestCanvasLabelsAndTooltip(t *testing.T) {
	f := frame()
	f.ShowLabels = true
	f.Tooltip = interact.Tooltip{Visible: true, X: 10, Y: 5, Text: "hello"}

	c := plainCanvas(40, 20)
	if err := c.Draw(f); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	out := c.Plain()
	if !strings.Contains(out, " hello ") {
		t.Errorf("tooltip missing:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	if !strings.Contains(lines[10], "a") {
		t.Errorf("label missing on node row: %q", lines[10])
	}
}

func TestCanvasSetLabelsOverridesFrame(t *testing.T) {
	tests := []struct {
		name      string
		frameShow bool
		override  bool
		want      bool
	}{
		{"force on", false, true, true},
		{"force off", true, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := frame()
			f.ShowLabels = tt.frameShow
			c := plainCanvas(40, 20)
			c.SetLabels(tt.override)
			if err := c.Draw(f); err != nil {
				t.Fatalf("Draw() error: %v", err)
			}
			row := strings.Split(c.Plain(), "\n")[10]
			if got := strings.Contains(row, "a"); got != tt.want {
				t.Errorf("label drawn = %v, want %v (row %q)", got, tt.want, row)
			}
		})
	}
}

func TestCanvasZoomFillsDisk(t *testing.T) {
	f := &render.Frame{
		Width: 20, Height: 20, Theme: render.Light,
		View:    interact.Transform{K: 4},
		Circles: []render.Circle{{X: 2.5, Y: 2.5, R: 1, Fill: "#000000"}},
	}
	c := plainCanvas(20, 20)
	if err := c.Draw(f); err != nil {
		t.Fatalf("Draw() error: %v", err)
	}
	if n := strings.Count(c.Plain(), string(glyphFill)); n < 8 {
		t.Errorf("filled cells = %d, want a visible disk", n)
	}
}

func TestClip(t *testing.T) {
	x1, y1, x2, y2, ok := clip(-10, 5, 30, 5, 20, 10)
	if !ok || x1 != 0 || x2 != 20 || y1 != 5 || y2 != 5 {
		t.Errorf("clip = %v %v %v %v %v", x1, y1, x2, y2, ok)
	}
	if _, _, _, _, ok := clip(-10, -5, -1, -5, 20, 10); ok {
		t.Error("segment outside box should be rejected")
	}
}

func TestToScreen(t *testing.T) {
	c := plainCanvas(40, 20)
	x, y := c.ToScreen(frame(), 0, 0)
	if x != 0.5 || y != 0.5 {
		t.Errorf("ToScreen(0,0) = (%v, %v), want (0.5, 0.5)", x, y)
	}
	w, h := c.ScreenSize(10)
	if w != 400 || h != 400 {
		t.Errorf("ScreenSize = %vx%v, want 400x400", w, h)
	}
}
