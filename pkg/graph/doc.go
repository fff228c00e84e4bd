// Package graph provides the data model for force-directed graphs and the
// serialization types for computed layouts.
//
// # Core Types
//
//   - [Graph]: node-link input data supplied by the host
//   - [Node], [Link]: the entities laid out and drawn
//   - [Layout]: positioned output of a simulation run
//   - [NodeNumber], [LinkNumber], [NodeString], [LinkString]: accessors
//     that are either constant or computed per entity
//
// # Graph Serialization
//
// Graphs use the node-link JSON format common to force layouts:
//
//	{
//	  "nodes": [{"id": "a", "group": 1}, {"id": "b", "size": 20}],
//	  "links": [{"source": "a", "target": "b", "weight": 2}]
//	}
//
// Links refer to nodes by id. Ids are resolved once, when a simulation is
// built, and an id that names no node is a configuration error rather than
// a silently dropped link. [Graph.Validate] performs the same checks up
// front.
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("data.json")
//	if err := g.Validate(); err != nil { ... }
//	graph.WriteGraph(g, os.Stdout)
//
// # Ownership
//
// Host data is treated as immutable. Consumers that need working state call
// [Graph.Clone] and mutate the copy.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
