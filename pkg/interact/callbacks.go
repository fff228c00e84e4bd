package interact

import "github.com/matzehuels/forcegraph/pkg/graph"

// Callbacks receives host notifications. Implementations are called
// synchronously from Controller.Handle and must not call back into the
// controller.
type Callbacks interface {
	OnNodeClick(n *graph.Node, ev Event)
	// OnNodeHover fires with the node under the pointer when it changes,
	// and with nil when the pointer leaves all nodes.
	OnNodeHover(n *graph.Node, ev Event)
	OnLinkClick(l *graph.Link, ev Event)
}

// CallbackFuncs adapts plain functions to Callbacks. Nil fields are skipped.
type CallbackFuncs struct {
	NodeClick func(n *graph.Node, ev Event)
	NodeHover func(n *graph.Node, ev Event)
	LinkClick func(l *graph.Link, ev Event)
}

func (f CallbackFuncs) OnNodeClick(n *graph.Node, ev Event) {
	if f.NodeClick != nil {
		f.NodeClick(n, ev)
	}
}

func (f CallbackFuncs) OnNodeHover(n *graph.Node, ev Event) {
	if f.NodeHover != nil {
		f.NodeHover(n, ev)
	}
}

func (f CallbackFuncs) OnLinkClick(l *graph.Link, ev Event) {
	if f.LinkClick != nil {
		f.LinkClick(l, ev)
	}
}

// Multi fans out notifications to several callbacks in order.
type Multi []Callbacks

func (m Multi) OnNodeClick(n *graph.Node, ev Event) {
	for _, c := range m {
		c.OnNodeClick(n, ev)
	}
}

func (m Multi) OnNodeHover(n *graph.Node, ev Event) {
	for _, c := range m {
		c.OnNodeHover(n, ev)
	}
}

func (m Multi) OnLinkClick(l *graph.Link, ev Event) {
	for _, c := range m {
		c.OnLinkClick(l, ev)
	}
}
