// Package pkg provides the libraries behind forcegraph, an interactive
// force-directed graph engine.
//
// # Overview
//
// Forcegraph takes node-link data, runs an alpha-cooled force simulation
// over it and binds the moving positions to a drawing surface. The pkg
// directory is organized into four areas:
//
//  1. [graph] and [io] - The data model and its JSON/YAML encodings
//  2. [force] and [interact] - The simulation and pointer interaction
//  3. [render] and [engine] - Frame binding and the per-surface engine
//  4. [pipeline] and [live] - Headless layout/render and the browser server
//
// # Architecture
//
// The data flow through forcegraph:
//
//	graph.json / graph.yaml / URL
//	         ↓
//	    [pipeline] Load (validate, recognize stored layouts)
//	         ↓
//	    [force] Simulation (tick until alpha < alphaMin)
//	         ↓
//	    [render] Binder (frame of circles, lines, labels)
//	         ↓
//	    [render/sink] SVG/PNG/JSON, [render/nodelink] DOT, [render/term] cells
//
// Interactive hosts skip the headless loop: an [engine.Engine] owns one
// simulation and one surface, advances a tick per frame and routes pointer
// events through [interact.Controller].
//
// # Quick Start
//
// Compute a converged layout and render it:
//
//	in, _ := pipeline.Load("graph.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(ctx, in.Graph, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	os.WriteFile("graph.svg", result.Artifacts[pipeline.FormatSVG], 0o644)
//
// Drive an engine by hand:
//
//	eng, _ := engine.New(in.Graph, engine.DefaultOptions())
//	eng.Mount(surface)
//	for eng.Frame() {
//	}
//
// # Main Packages
//
// [graph] - Node, link and layout types with validation.
//
// [io] - Graph file import and export by extension.
//
// [force] - The simulation: link springs, Barnes-Hut charge, centering,
// collision and alpha cooling.
//
// [interact] - Drag, hover, click, zoom and pan over a running simulation.
//
// [render] - Themes and the binder that turns simulation state into frames.
//
// [engine] - Lifecycle of one graph on one surface with pluggable frame
// scheduling.
//
// [pipeline] - Options, layout and render orchestration with caching.
//
// [cache] - Content-addressed layout and artifact caches.
//
// [live] - WebSocket server running one engine per browser connection.
//
// [httputil] - Remote graph fetching with retries.
//
// [errors] and [observability] - Coded errors and instrumentation hooks.
//
// # Testing
//
//	go test ./...
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/graph
// [io]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/io
// [force]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/force
// [interact]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/interact
// [interact.Controller]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/interact#Controller
// [render]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/render/nodelink
// [render/term]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/render/term
// [engine]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/engine
// [engine.Engine]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/engine#Engine
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/cache
// [live]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/live
// [httputil]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/observability
package pkg
