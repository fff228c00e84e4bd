package graph

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Constants
// =============================================================================

// Defaults shared by the solver and the renderers.
const (
	DefaultNodeSize = 12.0
	DefaultWeight   = 1.0
)

// =============================================================================
// Graph
// =============================================================================

// Graph is the host-supplied node-link data set.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Links []Link `json:"links" yaml:"links"`
}

// =============================================================================
// Node
// =============================================================================

// Node is a laid-out entity. Only ID is required.
type Node struct {
	ID    string         `json:"id" yaml:"id"`
	Group Group          `json:"group,omitempty" yaml:"group,omitempty"`
	Size  float64        `json:"size,omitempty" yaml:"size,omitempty"`
	Color string         `json:"color,omitempty" yaml:"color,omitempty"`
	Label string         `json:"label,omitempty" yaml:"label,omitempty"`
	Meta  map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`

	// Optional initial position. Nodes without one are placed on a spiral
	// around the center.
	X *float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y *float64 `json:"y,omitempty" yaml:"y,omitempty"`

	// Optional pinned position. A node with both set starts pinned.
	FX *float64 `json:"fx,omitempty" yaml:"fx,omitempty"`
	FY *float64 `json:"fy,omitempty" yaml:"fy,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// SizeOr returns the node size, or def when the size is unset.
func (n *Node) SizeOr(def float64) float64 {
	if n.Size > 0 {
		return n.Size
	}
	return def
}

// Pinned reports whether the node carries a fixed position.
func (n *Node) Pinned() bool { return n.FX != nil && n.FY != nil }

// Group is a categorical node attribute used for coloring. Hosts send both
// numbers and strings, so both decode into the same decimal string form.
type Group string

// UnmarshalJSON accepts a JSON string or number.
func (g *Group) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*g = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = Group(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*g = Group(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar.
func (g *Group) UnmarshalYAML(value *yaml.Node) error {
	*g = Group(value.Value)
	return nil
}

// Int returns the numeric form of the group and whether it has one.
func (g Group) Int() (int, bool) {
	n, err := strconv.Atoi(string(g))
	return n, err == nil
}

// =============================================================================
// Link
// =============================================================================

// Link connects two nodes by id. Self loops and duplicate links are allowed.
type Link struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`

	// Weight drives stroke width (sqrt(weight)). Value is accepted as an
	// alias for data sets in the older "value" convention.
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Value  float64 `json:"value,omitempty" yaml:"value,omitempty"`

	// Per-link overrides; zero means "use the simulation default".
	Strength float64 `json:"strength,omitempty" yaml:"strength,omitempty"`
	Distance float64 `json:"distance,omitempty" yaml:"distance,omitempty"`

	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// EffectiveWeight returns Weight, then Value, then DefaultWeight.
func (l *Link) EffectiveWeight() float64 {
	switch {
	case l.Weight > 0:
		return l.Weight
	case l.Value > 0:
		return l.Value
	default:
		return DefaultWeight
	}
}

// StrokeWidth is sqrt of the effective weight.
func (l *Link) StrokeWidth() float64 {
	return math.Sqrt(l.EffectiveWeight())
}

// IsSelfLoop reports whether both endpoints name the same node.
func (l *Link) IsSelfLoop() bool { return l.Source == l.Target }

// =============================================================================
// Accessors
// =============================================================================

// NodeNumber computes a numeric attribute of a node.
type NodeNumber func(n *Node) float64

// LinkNumber computes a numeric attribute of a link.
type LinkNumber func(l *Link) float64

// NodeString computes a string attribute of a node.
type NodeString func(n *Node) string

// LinkString computes a string attribute of a link.
type LinkString func(l *Link) string

// ConstNode returns an accessor yielding v for every node.
func ConstNode(v float64) NodeNumber { return func(*Node) float64 { return v } }

// ConstLink returns an accessor yielding v for every link.
func ConstLink(v float64) LinkNumber { return func(*Link) float64 { return v } }

// ConstString returns an accessor yielding s for every node.
func ConstString(s string) NodeString { return func(*Node) string { return s } }

// ConstLinkString returns an accessor yielding s for every link.
func ConstLinkString(s string) LinkString { return func(*Link) string { return s } }

// SizeScaled returns an accessor yielding SizeOr(def) * factor.
// The interactive viewer derives charge as SizeScaled(-15, 12).
func SizeScaled(factor, def float64) NodeNumber {
	return func(n *Node) float64 { return n.SizeOr(def) * factor }
}
