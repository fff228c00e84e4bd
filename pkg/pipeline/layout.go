package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout builds a simulation for g and ticks it until alpha drops
// below alphaMin or MaxTicks ticks have run. Radii and colors are resolved
// exactly as the interactive binder resolves them, without animation.
func GenerateLayout(ctx context.Context, g graph.Graph, opts Options) (graph.Layout, error) {
	opts.SetDefaults()
	ro, err := opts.RenderOptions()
	if err != nil {
		return graph.Layout{}, err
	}
	sim, err := force.New(g, opts.ForceConfig())
	if err != nil {
		return graph.Layout{}, err
	}

	start := time.Now()
	ticks, err := sim.Run(ctx, opts.MaxTicks)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("simulation stopped after %d ticks: %w", ticks, err)
	}
	opts.Logger.Debug("simulation finished",
		"ticks", ticks,
		"alpha", sim.Alpha(),
		"converged", sim.Converged(),
		"duration", time.Since(start))
	if !sim.Converged() && sim.Len() > 0 {
		opts.Logger.Warn("simulation hit the tick limit before converging", "max_ticks", opts.MaxTicks)
	}

	f, err := render.Snapshot(sim, ro)
	if err != nil {
		return graph.Layout{}, err
	}
	return f.Layout(), nil
}

// GraphFromLayout recovers input data from a layout. Every node starts at
// its laid-out position, so a viewer opened on a layout file begins from
// the converged picture.
func GraphFromLayout(l graph.Layout) graph.Graph {
	g := graph.Graph{
		Nodes: make([]graph.Node, len(l.Nodes)),
		Links: make([]graph.Link, len(l.Links)),
	}
	for i, n := range l.Nodes {
		x, y := n.X, n.Y
		g.Nodes[i] = graph.Node{
			ID:    n.ID,
			Label: n.Label,
			Group: n.Group,
			Color: n.Color,
			Size:  n.Radius,
			X:     &x,
			Y:     &y,
		}
		if n.Pinned {
			fx, fy := n.X, n.Y
			g.Nodes[i].FX, g.Nodes[i].FY = &fx, &fy
		}
	}
	for i, e := range l.Links {
		g.Links[i] = graph.Link{Source: e.Source, Target: e.Target, Weight: e.Width * e.Width, Color: e.Color}
	}
	return g
}
