package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/matzehuels/forcegraph/pkg/errors"
)

// =============================================================================
// Validation
// =============================================================================

// Validate checks node ids and link endpoints. It returns the first problem
// found as a coded *errors.Error; nothing is dropped or repaired.
func (g *Graph) Validate() error {
	_, err := g.Index()
	return err
}

// Index maps node ids to their position in Nodes and verifies that every
// link endpoint resolves.
func (g *Graph) Index() (map[string]int, error) {
	idx := make(map[string]int, len(g.Nodes))
	for i := range g.Nodes {
		id := g.Nodes[i].ID
		if err := errors.ValidateNodeID(id); err != nil {
			return nil, errors.New(errors.ErrCodeInvalidNode, "node %d: %s", i, errors.UserMessage(err))
		}
		if _, dup := idx[id]; dup {
			return nil, errors.New(errors.ErrCodeDuplicateNode, "duplicate node id %q", id)
		}
		idx[id] = i
	}
	for i := range g.Links {
		l := &g.Links[i]
		if _, ok := idx[l.Source]; !ok {
			return nil, errors.New(errors.ErrCodeUnresolvedLink, "link %d: source %q not found", i, l.Source)
		}
		if _, ok := idx[l.Target]; !ok {
			return nil, errors.New(errors.ErrCodeUnresolvedLink, "link %d: target %q not found", i, l.Target)
		}
	}
	return idx, nil
}

// =============================================================================
// Copying and identity
// =============================================================================

// Clone returns a deep copy of g.
func (g *Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Links: make([]Link, len(g.Links)),
	}
	for i, n := range g.Nodes {
		n.Meta = maps.Clone(n.Meta)
		n.X, n.Y = clonePtr(n.X), clonePtr(n.Y)
		n.FX, n.FY = clonePtr(n.FX), clonePtr(n.FY)
		out.Nodes[i] = n
	}
	copy(out.Links, g.Links)
	return out
}

// Hash returns a content hash of g. Two graphs with equal hashes carry the
// same data, which lets hosts skip rebuilding a simulation on a no-op reload.
func (g *Graph) Hash() string {
	data, err := json.Marshal(g)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// WriteGraph writes g as indented JSON.
func WriteGraph(g Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes g to a JSON file.
func WriteGraphFile(g Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraph decodes a JSON graph and validates it.
func ReadGraph(r io.Reader) (Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	if err := g.Validate(); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// ReadGraphFile reads and validates a JSON graph file.
func ReadGraphFile(path string) (Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Graph{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
