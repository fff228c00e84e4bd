package sink

import (
	"encoding/json"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	frame   bool
	compact bool
}

// WithJSONFrame emits the full frame (view, tooltip, theme colors, link
// opacity) instead of the round-trippable layout.
func WithJSONFrame() JSONOption { return func(r *jsonRenderer) { r.frame = true } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

// RenderJSON exports node positions and resolved attributes. By default the
// output is a [graph.Layout], which can be read back with
// [graph.UnmarshalLayout] and redrawn with [render.FromLayout] without
// running the solver again.
func RenderJSON(f *render.Frame, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}

	var v any = f
	if !r.frame {
		l := f.Layout()
		v = l
		if !r.compact {
			return graph.MarshalLayout(l)
		}
	}
	if r.compact {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}
