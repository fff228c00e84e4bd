package interact

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
)

func ptr(v float64) *float64 { return &v }

// fixture places A at (10,10), B at (50,10), C at (200,200) with links A-B
// and B-C.
func fixture(t *testing.T) *force.Simulation {
	t.Helper()
	g := graph.Graph{
		Nodes: []graph.Node{
			{ID: "A", Label: "Alpha", X: ptr(10), Y: ptr(10)},
			{ID: "B", X: ptr(50), Y: ptr(10)},
			{ID: "C", X: ptr(200), Y: ptr(200)},
		},
		Links: []graph.Link{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}},
	}
	sim, err := force.New(g, force.Config{Width: 400, Height: 400})
	require.NoError(t, err)
	return sim
}

type recorder struct {
	clicks []string
	hovers []string
	links  []string
}

func (r *recorder) OnNodeClick(n *graph.Node, _ Event) { r.clicks = append(r.clicks, n.ID) }
func (r *recorder) OnNodeHover(n *graph.Node, _ Event) {
	if n == nil {
		r.hovers = append(r.hovers, "<nil>")
		return
	}
	r.hovers = append(r.hovers, n.ID)
}
func (r *recorder) OnLinkClick(l *graph.Link, _ Event) {
	r.links = append(r.links, l.Source+"-"+l.Target)
}

func ev(k Kind, x, y float64) Event { return Event{Kind: k, X: x, Y: y} }

func TestDragPinsImmediatelyAndReleaseClears(t *testing.T) {
	sim := fixture(t)
	ctl := NewController(sim, nil, DefaultOptions())

	res := ctl.Handle(ev(PointerDown, 10, 10))
	assert.True(t, res.Reheated)
	assert.Equal(t, Dragging, ctl.State("A"))
	assert.True(t, ctl.Dragging())

	ctl.Handle(ev(PointerMove, 100, 100))
	fx, fy, pinned := sim.Body(0).Fixed()
	require.True(t, pinned)
	assert.Equal(t, 100.0, fx)
	assert.Equal(t, 100.0, fy)
	x, y, _ := sim.Position("A")
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 100.0, y)

	ctl.Handle(ev(PointerUp, 100, 100))
	_, _, pinned = sim.Body(0).Fixed()
	assert.False(t, pinned)
	assert.Equal(t, Free, ctl.State("A"))
	assert.False(t, ctl.Dragging())
	assert.Zero(t, sim.AlphaTarget())
}

func TestDragReheatsToTarget(t *testing.T) {
	sim := fixture(t)
	sim.SetAlpha(0.01)
	ctl := NewController(sim, nil, DefaultOptions())

	ctl.Handle(ev(PointerDown, 50, 10))
	assert.Equal(t, 0.3, sim.Alpha())
	assert.Equal(t, 0.3, sim.AlphaTarget())
	assert.True(t, sim.Active())
}

func TestPinnedNodeHoldsDuringTicks(t *testing.T) {
	sim := fixture(t)
	ctl := NewController(sim, nil, DefaultOptions())
	ctl.Handle(ev(PointerDown, 10, 10))
	ctl.Handle(ev(PointerMove, 120, 80))
	for range 50 {
		sim.Tick()
	}
	x, y, _ := sim.Position("A")
	assert.Equal(t, 120.0, x)
	assert.Equal(t, 80.0, y)
}

func TestConcurrentDragsKeepTargetUntilLastRelease(t *testing.T) {
	sim := fixture(t)
	ctl := NewController(sim, nil, DefaultOptions())

	ctl.Handle(Event{Kind: PointerDown, X: 10, Y: 10, Pointer: 1})
	res := ctl.Handle(Event{Kind: PointerDown, X: 200, Y: 200, Pointer: 2})
	assert.False(t, res.Reheated, "second drag does not reheat again")

	ctl.Handle(Event{Kind: PointerUp, X: 10, Y: 10, Pointer: 1})
	assert.Equal(t, 0.3, sim.AlphaTarget())
	assert.Equal(t, Dragging, ctl.State("C"))

	ctl.Handle(Event{Kind: PointerUp, X: 200, Y: 200, Pointer: 2})
	assert.Zero(t, sim.AlphaTarget())
}

func TestRepeatedPressReleasesEarlierDrag(t *testing.T) {
	sim := fixture(t)
	hooks := &hookRecorder{}
	observability.SetInteractionHooks(hooks)
	defer observability.Reset()
	ctl := NewController(sim, nil, DefaultOptions())

	ctl.Handle(ev(PointerDown, 10, 10))
	res := ctl.Handle(ev(PointerDown, 50, 10))
	assert.True(t, res.Reheated, "the stale drag was released first")
	assert.Equal(t, Free, ctl.State("A"))
	assert.Equal(t, Dragging, ctl.State("B"))
	_, _, pinned := sim.Body(0).Fixed()
	assert.False(t, pinned)
	assert.Equal(t, []string{"start:A", "end:A", "start:B"}, hooks.events)

	ctl.Handle(ev(PointerUp, 50, 10))
	assert.False(t, ctl.Dragging())
	assert.Zero(t, sim.AlphaTarget())

	n, err := sim.Run(context.Background(), 5000)
	require.NoError(t, err)
	assert.Less(t, n, 5000)
	assert.True(t, sim.Converged())
}

func TestLeaveEndsOpenPress(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float64
		pinned bool
	}{
		{"drag", 10, 10, true},
		{"pan", 300, 50, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := fixture(t)
			rec := &recorder{}
			ctl := NewController(sim, rec, DefaultOptions())

			ctl.Handle(ev(PointerDown, tt.x, tt.y))
			_, _, pinned := sim.Body(0).Fixed()
			require.Equal(t, tt.pinned, pinned)

			ctl.Handle(ev(PointerMove, tt.x+20, tt.y+20))
			ctl.Handle(ev(PointerLeave, tt.x+20, tt.y+20))

			_, _, pinned = sim.Body(0).Fixed()
			assert.False(t, pinned)
			assert.False(t, ctl.Dragging())
			assert.Equal(t, Free, ctl.State("A"))
			assert.Zero(t, sim.AlphaTarget())

			// The release after leaving belongs to no press.
			assert.Equal(t, Result{}, ctl.Handle(ev(PointerUp, tt.x+20, tt.y+20)))
			assert.Empty(t, rec.clicks)
			assert.Empty(t, rec.links)
		})
	}
}

func TestLeaveWithoutMoveIsNotAClick(t *testing.T) {
	sim := fixture(t)
	rec := &recorder{}
	ctl := NewController(sim, rec, DefaultOptions())

	ctl.Handle(ev(PointerDown, 10, 10))
	ctl.Handle(ev(PointerLeave, 10, 10))
	ctl.Handle(ev(PointerUp, 10, 10))
	assert.Empty(t, rec.clicks)
	assert.False(t, ctl.Dragging())
}

func TestEventsWithoutTargetAreNoOps(t *testing.T) {
	sim := fixture(t)
	ctl := NewController(sim, nil, DefaultOptions())

	assert.Equal(t, Result{}, ctl.Handle(ev(PointerUp, 10, 10)))
	assert.Equal(t, Result{}, ctl.Handle(ev(PointerMove, 300, 300)))
	assert.Equal(t, Result{}, ctl.Handle(Event{Kind: PointerDown, X: 10, Y: 10, Button: ButtonRight}))
	_, _, pinned := sim.Body(0).Fixed()
	assert.False(t, pinned)
}

func TestClickVersusDrag(t *testing.T) {
	sim := fixture(t)
	rec := &recorder{}
	ctl := NewController(sim, rec, DefaultOptions())

	ctl.Handle(ev(PointerDown, 10, 10))
	ctl.Handle(ev(PointerMove, 12, 11))
	ctl.Handle(ev(PointerUp, 12, 11))
	assert.Equal(t, []string{"A"}, rec.clicks)

	ctl.Handle(ev(PointerDown, 50, 10))
	ctl.Handle(ev(PointerMove, 80, 40))
	ctl.Handle(ev(PointerUp, 80, 40))
	assert.Equal(t, []string{"A"}, rec.clicks, "a drag is not a click")
}

func TestClickWithDragDisabled(t *testing.T) {
	sim := fixture(t)
	rec := &recorder{}
	opts := DefaultOptions()
	opts.Drag = false
	ctl := NewController(sim, rec, opts)

	res := ctl.Handle(ev(PointerDown, 10, 10))
	assert.False(t, res.Reheated)
	_, _, pinned := sim.Body(0).Fixed()
	assert.False(t, pinned)
	ctl.Handle(ev(PointerUp, 10, 10))
	assert.Equal(t, []string{"A"}, rec.clicks)
}

func TestLinkClick(t *testing.T) {
	sim := fixture(t)
	rec := &recorder{}
	ctl := NewController(sim, rec, DefaultOptions())

	ctl.Handle(ev(PointerDown, 30, 12))
	ctl.Handle(ev(PointerUp, 30, 12))
	assert.Equal(t, []string{"A-B"}, rec.links)
	assert.Empty(t, rec.clicks)
}

func TestHoverAndTooltip(t *testing.T) {
	sim := fixture(t)
	rec := &recorder{}
	ctl := NewController(sim, rec, DefaultOptions())

	res := ctl.Handle(ev(PointerMove, 11, 9))
	assert.True(t, res.Redraw)
	tip := ctl.Tooltip()
	assert.True(t, tip.Visible)
	assert.Equal(t, "Alpha", tip.Text)
	assert.Equal(t, 11.0, tip.X)
	id, ok := ctl.Hovered()
	assert.True(t, ok)
	assert.Equal(t, "A", id)

	ctl.Handle(ev(PointerMove, 12, 10))
	assert.Equal(t, 12.0, ctl.Tooltip().X, "tooltip follows pointer")

	ctl.Handle(ev(PointerMove, 120, 120))
	assert.False(t, ctl.Tooltip().Visible)
	assert.Equal(t, []string{"A", "<nil>"}, rec.hovers)

	ctl.Handle(ev(PointerMove, 200, 200))
	ctl.Handle(ev(PointerLeave, 500, 500))
	assert.False(t, ctl.Tooltip().Visible)
	assert.Equal(t, []string{"A", "<nil>", "C", "<nil>"}, rec.hovers)
}

func TestTooltipDisabledStillNotifiesHover(t *testing.T) {
	sim := fixture(t)
	rec := &recorder{}
	opts := DefaultOptions()
	opts.Tooltip = false
	ctl := NewController(sim, rec, opts)

	ctl.Handle(ev(PointerMove, 10, 10))
	assert.False(t, ctl.Tooltip().Visible)
	assert.Equal(t, []string{"A"}, rec.hovers)
}

func TestWheelZoomIsClamped(t *testing.T) {
	sim := fixture(t)
	ctl := NewController(sim, nil, DefaultOptions())

	for range 100 {
		ctl.Handle(Event{Kind: Wheel, X: 100, Y: 100, DeltaY: -500})
	}
	assert.Equal(t, DefaultMaxScale, ctl.Transform().K)

	for range 200 {
		ctl.Handle(Event{Kind: Wheel, X: 100, Y: 100, DeltaY: 500})
	}
	assert.Equal(t, DefaultMinScale, ctl.Transform().K)

	res := ctl.Handle(Event{Kind: Wheel, X: 100, Y: 100, DeltaY: 500})
	assert.False(t, res.Redraw, "zoom at the limit changes nothing")
}

func TestWheelZoomKeepsPointAnchored(t *testing.T) {
	sim := fixture(t)
	ctl := NewController(sim, nil, DefaultOptions())
	wx, wy := ctl.Transform().Invert(120, 80)
	ctl.Handle(Event{Kind: Wheel, X: 120, Y: 80, DeltaY: -250})
	assert.Greater(t, ctl.Transform().K, 1.0)
	gx, gy := ctl.Transform().Invert(120, 80)
	assert.InDelta(t, wx, gx, 1e-9)
	assert.InDelta(t, wy, gy, 1e-9)
}

func TestZoomDisabled(t *testing.T) {
	sim := fixture(t)
	opts := DefaultOptions()
	opts.Zoom = false
	ctl := NewController(sim, nil, opts)
	ctl.Handle(Event{Kind: Wheel, X: 100, Y: 100, DeltaY: -500})
	ctl.Handle(ev(PointerDown, 300, 300))
	ctl.Handle(ev(PointerMove, 350, 350))
	assert.Equal(t, Identity, ctl.Transform())
}

func TestPanTranslates(t *testing.T) {
	sim := fixture(t)
	ctl := NewController(sim, nil, DefaultOptions())
	ctl.Handle(ev(PointerDown, 300, 300))
	ctl.Handle(ev(PointerMove, 320, 290))
	ctl.Handle(ev(PointerMove, 330, 280))
	ctl.Handle(ev(PointerUp, 330, 280))
	assert.Equal(t, Transform{K: 1, X: 30, Y: -20}, ctl.Transform())
}

func TestDragUnderZoomUsesSimulationSpace(t *testing.T) {
	sim := fixture(t)
	ctl := NewController(sim, nil, DefaultOptions())
	ctl.SetTransform(Transform{K: 2, X: 10, Y: 0})

	// A at (10,10) is drawn at (30,20).
	assert.Equal(t, 0, ctl.NodeAt(30, 20))
	ctl.Handle(ev(PointerDown, 30, 20))
	ctl.Handle(ev(PointerMove, 210, 200))
	fx, fy, _ := sim.Body(0).Fixed()
	assert.Equal(t, 100.0, fx)
	assert.Equal(t, 100.0, fy)
}

func TestSetTransformClamps(t *testing.T) {
	ctl := NewController(fixture(t), nil, DefaultOptions())
	ctl.SetTransform(Transform{K: 50})
	assert.Equal(t, DefaultMaxScale, ctl.Transform().K)
	ctl.SetTransform(Transform{K: 0.001})
	assert.Equal(t, DefaultMinScale, ctl.Transform().K)
}

func TestResetReleasesDrags(t *testing.T) {
	sim := fixture(t)
	ctl := NewController(sim, nil, DefaultOptions())
	ctl.Handle(ev(PointerMove, 10, 10))
	ctl.Handle(ev(PointerDown, 10, 10))
	ctl.Reset()

	_, _, pinned := sim.Body(0).Fixed()
	assert.False(t, pinned)
	assert.False(t, ctl.Dragging())
	assert.False(t, ctl.Tooltip().Visible)
	assert.Zero(t, sim.AlphaTarget())
	assert.Equal(t, Result{}, ctl.Handle(ev(PointerUp, 10, 10)))
}

func TestInteractionHooks(t *testing.T) {
	h := &hookRecorder{}
	observability.SetInteractionHooks(h)
	defer observability.Reset()

	ctl := NewController(fixture(t), nil, DefaultOptions())
	ctl.Handle(ev(PointerDown, 10, 10))
	ctl.Handle(ev(PointerUp, 10, 10))
	ctl.Handle(Event{Kind: Wheel, X: 0, Y: 0, DeltaY: -100})

	assert.Equal(t, []string{"start:A", "end:A"}, h.events)
	require.Len(t, h.zooms, 1)
	assert.InDelta(t, math.Pow(2, 0.2), h.zooms[0], 1e-12)
}

type hookRecorder struct {
	observability.NoopInteractionHooks
	events []string
	zooms  []float64
}

func (h *hookRecorder) OnDragStart(_ context.Context, id string) { h.events = append(h.events, "start:"+id) }
func (h *hookRecorder) OnDragEnd(_ context.Context, id string)   { h.events = append(h.events, "end:"+id) }
func (h *hookRecorder) OnZoom(_ context.Context, k float64)      { h.zooms = append(h.zooms, k) }
