// Package interact turns pointer events into simulation and view changes.
//
// A [Controller] owns the zoom/pan [Transform], the per-node drag state
// (Free or Dragging), hover tracking and the tooltip. Hosts translate their
// native input into [Event] values and pass them to [Controller.Handle]:
//
//	ctl := interact.NewController(sim, callbacks, interact.DefaultOptions())
//	res := ctl.Handle(interact.Event{Kind: interact.PointerDown, X: 120, Y: 80})
//	if res.Reheated {
//	    scheduler.Resume()
//	}
//
// # Drag
//
// Pressing on a node pins it where it is and reheats the simulation: the
// alpha target becomes ReheatAlpha and alpha is raised to at least that
// value. Moving pins the node under the pointer. Releasing unpins it and,
// once no drag remains, sets the alpha target back to zero so the layout
// cools normally.
//
// # Zoom and pan
//
// Wheel events scale around the pointer by 2^(-deltaY*sensitivity); the
// scale is always clamped to [MinScale, MaxScale]. Pressing on empty canvas
// pans.
//
// # Clicks and hover
//
// A press released within ClickTolerance screen pixels of where it started
// is a click, reported to [Callbacks] for the node or link under it. Hover
// notifications fire when the node under the pointer changes, with nil on
// exit. Pointer events with no drag target are no-ops.
package interact
