// Package io reads and writes graph data files in JSON or YAML.
//
// # Formats
//
// The format is chosen by file extension:
//
//   - .json: the node-link JSON format of [graph.Graph]
//   - .yaml, .yml: the same structure in YAML
//
// A YAML data set looks like:
//
//	nodes:
//	  - id: a
//	    group: 1
//	  - id: b
//	    size: 20
//	links:
//	  - source: a
//	    target: b
//	    weight: 2
//
// # Node Fields
//
// Required:
//   - id: Unique string identifier (also the default label)
//
// Optional:
//   - group: Category used for palette coloring (number or string)
//   - size: Radius hint and charge scaling input
//   - color: Explicit fill color, overrides the palette
//   - label: Display label
//   - x, y: Initial position
//   - fx, fy: Pinned position
//   - meta: Freeform object
//
// # Import
//
// Use [ImportFile] to read a graph from a path, or [ReadJSON] / [ReadYAML]
// to read from any io.Reader:
//
//	g, err := io.ImportFile("data.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Every reader validates the result: duplicate ids and links naming unknown
// nodes are reported as coded errors from [errors].
//
// # Export
//
// Use [ExportFile] to write a graph to a file in the format its extension
// names, or [WriteYAML] / [graph.WriteGraph] for any io.Writer.
//
// Computed positions are not part of this package; see [graph.Layout].
//
// [errors]: github.com/matzehuels/forcegraph/pkg/errors
package io
