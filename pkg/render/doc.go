// Package render binds a running simulation to drawing primitives.
//
// # Overview
//
// A [Binder] owns one [Circle] per node and one [Line] per link. Visual
// attributes are resolved once at [Binder.Mount] from accessors in
// [Options], each either a constant or a function of the entity:
//
//	opts := render.DefaultOptions()
//	opts.NodeRadius = graph.SizeScaled(1.5, graph.DefaultNodeSize)
//	opts.LinkColor = graph.ConstLinkString("#cccccc")
//
// Positions are refreshed on every [Binder.Update] and the finished [Frame]
// is handed to a [Surface]. Frames draw links first, nodes on top, then the
// tooltip.
//
// # Entry animation
//
// With Options.Animate set, radii grow from zero and link opacity fades in
// from zero over AnimationDuration (800ms by default) using a cubic
// in-out ease. The animation runs on the clock passed to Update, so hosts
// and tests control time explicitly.
//
// # Surfaces
//
// A surface reports whether it is attached. Frames drawn while detached are
// deferred rather than failing; [Binder.Pending] reports a deferred frame
// and [Binder.Flush] draws it once the surface attaches.
//
// Output formats live in subpackages:
//   - [sink]: SVG, PNG and JSON files
//   - [nodelink]: Graphviz DOT and neato-rendered images
//   - [term]: a terminal cell canvas
//
// # Themes
//
// [Light] and [Dark] set background, text and stroke colors. Group colors
// come from an ordinal scale over a categorical scheme ([Category10] by
// default), assigned in order of first appearance.
package render
