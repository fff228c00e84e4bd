package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Theme holds the colors shared by every surface.
type Theme struct {
	Name       string `json:"name"`
	Background string `json:"background"`
	Text       string `json:"text"`
	NodeStroke string `json:"node_stroke"`
	LinkStroke string `json:"link_stroke"`
	TooltipBG  string `json:"tooltip_bg"`
}

var (
	Light = Theme{
		Name:       "light",
		Background: "#ffffff",
		Text:       "#333333",
		NodeStroke: "#ffffff",
		LinkStroke: "#999999",
		TooltipBG:  "#f7f7f7",
	}
	Dark = Theme{
		Name:       "dark",
		Background: "#1a1a1a",
		Text:       "#ffffff",
		NodeStroke: "#1a1a1a",
		LinkStroke: "#666666",
		TooltipBG:  "#2d2d2d",
	}
)

// Themes lists the built-in theme names.
var Themes = []string{Light.Name, Dark.Name}

// ThemeByName returns a built-in theme. The empty name selects Light.
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(name) {
	case "", Light.Name:
		return Light, nil
	case Dark.Name:
		return Dark, nil
	}
	return Theme{}, errors.New(errors.ErrCodeInvalidTheme, "unknown theme %q (valid: %s)", name, strings.Join(Themes, ", "))
}

// Categorical color schemes for group coloring.
var (
	Category10 = []string{
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	}
	Tableau10 = []string{
		"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
		"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
	}
	Pastel1 = []string{
		"#fbb4ae", "#b3cde3", "#ccebc5", "#decbe4", "#fed9a6",
		"#ffffcc", "#e5d8bd", "#fddaec", "#f2f2f2",
	}
)

var schemes = map[string][]string{
	"category10": Category10,
	"tableau10":  Tableau10,
	"pastel1":    Pastel1,
}

// SchemeNames lists the built-in scheme names in sorted order.
func SchemeNames() []string {
	names := make([]string, 0, len(schemes))
	for k := range schemes {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// SchemeByName returns a built-in color scheme. The empty name selects
// Category10.
func SchemeByName(name string) ([]string, error) {
	if name == "" {
		return Category10, nil
	}
	s, ok := schemes[strings.ToLower(name)]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidColor, "unknown color scheme %q (valid: %s)", name, strings.Join(SchemeNames(), ", "))
	}
	return s, nil
}

// Ordinal assigns colors to group keys in order of first appearance,
// cycling through the scheme.
type Ordinal struct {
	scheme []string
	seen   map[graph.Group]int
}

// NewOrdinal returns an ordinal scale over scheme, or Category10 if empty.
func NewOrdinal(scheme []string) *Ordinal {
	if len(scheme) == 0 {
		scheme = Category10
	}
	return &Ordinal{scheme: scheme, seen: make(map[graph.Group]int)}
}

// Color returns the color for group g.
func (o *Ordinal) Color(g graph.Group) string {
	i, ok := o.seen[g]
	if !ok {
		i = len(o.seen)
		o.seen[g] = i
	}
	return o.scheme[i%len(o.scheme)]
}
