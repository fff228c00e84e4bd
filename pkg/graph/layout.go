package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/matzehuels/forcegraph/pkg/errors"
)

// =============================================================================
// Layout - Positioned Output
// =============================================================================

// Layout is the serialized result of a simulation: every node with its
// final position and resolved visual attributes, and every link with its
// endpoints. It carries enough to redraw without re-running the solver.
type Layout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Theme  string  `json:"theme,omitempty"`

	// Solver state at the time the layout was captured.
	Alpha     float64 `json:"alpha"`
	Ticks     int     `json:"ticks"`
	Converged bool    `json:"converged"`

	Nodes []PlacedNode `json:"nodes"`
	Links []PlacedLink `json:"links"`
}

// PlacedNode is a node with its position and drawing attributes.
type PlacedNode struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	Group  Group   `json:"group,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color,omitempty"`
	Pinned bool    `json:"pinned,omitempty"`
}

// PlacedLink is a link with resolved endpoint coordinates.
type PlacedLink struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Width  float64 `json:"width"`
	Color  string  `json:"color,omitempty"`
}

// Bounds returns the bounding box of all node circles. An empty layout
// returns the frame rectangle.
func (l *Layout) Bounds() (minX, minY, maxX, maxY float64) {
	if len(l.Nodes) == 0 {
		return 0, 0, l.Width, l.Height
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range l.Nodes {
		minX = min(minX, n.X-n.Radius)
		minY = min(minY, n.Y-n.Radius)
		maxX = max(maxX, n.X+n.Radius)
		maxY = max(maxY, n.Y+n.Radius)
	}
	return minX, minY, maxX, maxY
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Dimensions must be positive and every link must name a placed node.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := errors.ValidateDimensions(l.Width, l.Height); err != nil {
		return Layout{}, err
	}
	ids := make(map[string]struct{}, len(l.Nodes))
	for _, n := range l.Nodes {
		ids[n.ID] = struct{}{}
	}
	for i, e := range l.Links {
		if _, ok := ids[e.Source]; !ok {
			return Layout{}, errors.New(errors.ErrCodeUnresolvedLink, "layout link %d: source %q not found", i, e.Source)
		}
		if _, ok := ids[e.Target]; !ok {
			return Layout{}, errors.New(errors.ErrCodeUnresolvedLink, "layout link %d: target %q not found", i, e.Target)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}

// IsLayout reports whether raw JSON looks like a serialized Layout rather
// than an input Graph. Layout nodes always carry a radius.
func IsLayout(data []byte) bool {
	var probe struct {
		Width float64 `json:"width"`
		Nodes []struct {
			Radius *float64 `json:"radius"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	if probe.Width <= 0 {
		return false
	}
	for _, n := range probe.Nodes {
		if n.Radius == nil {
			return false
		}
	}
	return true
}
