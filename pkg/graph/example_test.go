package graph_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

func ExampleWriteGraph() {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "a", Group: "1"}, {ID: "b"}},
		Links: []graph.Link{{Source: "a", Target: "b"}},
	}

	var buf bytes.Buffer
	if err := graph.WriteGraph(g, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "a",
	//       "group": "1"
	//     },
	//     {
	//       "id": "b"
	//     }
	//   ],
	//   "links": [
	//     {
	//       "source": "a",
	//       "target": "b"
	//     }
	//   ]
	// }
}

func ExampleReadGraph() {
	jsonData := `{
		"nodes": [{"id": "a", "group": 1}, {"id": "b", "size": 20}],
		"links": [{"source": "a", "target": "b", "weight": 4}]
	}`

	g, err := graph.ReadGraph(strings.NewReader(jsonData))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println("Nodes:", len(g.Nodes))
	fmt.Println("Group of a:", g.Nodes[0].Group)
	fmt.Println("Stroke width:", g.Links[0].StrokeWidth())
	// Output:
	// Nodes: 2
	// Group of a: 1
	// Stroke width: 2
}

func ExampleGraph_Validate() {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "a"}},
		Links: []graph.Link{{Source: "a", Target: "missing"}},
	}
	err := g.Validate()
	fmt.Println(errors.GetCode(err))
	fmt.Println(errors.UserMessage(err))
	// Output:
	// UNRESOLVED_LINK
	// link 0: target "missing" not found
}
