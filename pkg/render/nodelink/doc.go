// Package nodelink exports force layouts as Graphviz node-link diagrams.
//
// # Overview
//
// [ToDOT] writes every node with a pinned position (pos="x,y!") taken from
// the simulation, so Graphviz's neato engine draws the force layout as-is
// rather than computing its own. This makes the layout usable from any
// Graphviz tool chain.
//
//	dot := nodelink.ToDOT(frame, nodelink.Options{Labels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Labels: print node labels inside the circles
//   - Directed: emit a digraph with arrowheads
//
// # Dependencies
//
// Rendering uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process; no external binaries are needed.
package nodelink
