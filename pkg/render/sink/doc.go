// Package sink writes render frames to files.
//
// # Overview
//
// A "sink" turns a finished [render.Frame] into bytes. This package
// provides:
//
//   - SVG: vector output with per-node titles and optional hover styling
//   - PNG: in-process rasterization, no external tools required
//   - JSON: the positioned layout, or the full frame
//
// All sinks apply the frame's view transform, so callers decide framing
// with [render.Frame.Fit] or an interactive zoom before rendering.
//
//	f, _ := render.Snapshot(sim, render.DefaultOptions())
//	f.Fit(20)
//	svg := sink.RenderSVG(f, sink.WithTitle("deps"))
//	png, err := sink.RenderPNG(f, sink.WithScale(2))
//
// Sinks never modify the frame and are safe to call concurrently on the
// same frame.
package sink
