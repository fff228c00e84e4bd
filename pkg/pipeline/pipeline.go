// Package pipeline provides the headless load → layout → render pipeline
// for forcegraph.
//
// The CLI, the terminal viewer and the live server all build their solver,
// render and interaction settings from one [Options] value, so defaults and
// validation live here and nowhere else.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a graph (JSON or YAML) or a previously computed layout
//  2. Layout: Run the force solver until it converges
//  3. Render: Generate output in various formats (SVG, PNG, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	opts := pipeline.Options{Formats: []string{"svg", "png"}}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	layout, err := runner.Layout(ctx, g, opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/engine"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/force"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/interact"
	"github.com/matzehuels/forcegraph/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, Viewer and Server
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 600.0

	// DefaultChargePerSize scales node size into repulsion:
	// charge = -(size || 12) * DefaultChargePerSize.
	DefaultChargePerSize = 15.0

	// DefaultMaxTicks caps headless layout runs. A default simulation
	// converges in about 300 ticks.
	DefaultMaxTicks = 1000

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultScale is the PNG pixel density.
	DefaultScale = 2.0

	// DefaultFitPadding is the margin kept around a fitted drawing.
	DefaultFitPadding = 20.0
)

// Format constants for output formats.
const (
	FormatSVG    = "svg"
	FormatPNG    = "png"
	FormatJSON   = "json"
	FormatDOT    = "dot"
	FormatDOTSVG = "dot-svg"
	FormatDOTPNG = "dot-png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:    true,
	FormatPNG:    true,
	FormatJSON:   true,
	FormatDOT:    true,
	FormatDOTSVG: true,
	FormatDOTPNG: true,
}

// FormatNames returns the supported formats in a stable order.
func FormatNames() []string {
	return []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT, FormatDOTSVG, FormatDOTPNG}
}

// Extension returns the file extension used for a format.
func Extension(format string) string {
	switch format {
	case FormatDOTSVG:
		return ".dot.svg"
	case FormatDOTPNG:
		return ".dot.png"
	default:
		return "." + format
	}
}

// =============================================================================
// Options - Simulation Configuration
// =============================================================================

// Options contains all configuration for a simulation and its renderings.
// It is loaded from config files (TOML or YAML), overridden by flags, and
// supports JSON for the live server's handshake.
type Options struct {
	// Layout options
	Width          float64 `json:"width,omitempty" toml:"width" yaml:"width,omitempty"`
	Height         float64 `json:"height,omitempty" toml:"height" yaml:"height,omitempty"`
	Charge         float64 `json:"charge,omitempty" toml:"charge" yaml:"charge,omitempty"`                            // constant strength; 0 uses ChargePerSize
	ChargePerSize  float64 `json:"charge_per_size,omitempty" toml:"charge_per_size" yaml:"charge_per_size,omitempty"` // charge = -(size||12) * ChargePerSize
	LinkDistance   float64 `json:"link_distance,omitempty" toml:"link_distance" yaml:"link_distance,omitempty"`
	LinkStrength   float64 `json:"link_strength,omitempty" toml:"link_strength" yaml:"link_strength,omitempty"` // 0 uses the degree-based default
	CenterStrength float64 `json:"center_strength,omitempty" toml:"center_strength" yaml:"center_strength,omitempty"`
	AlphaMin       float64 `json:"alpha_min,omitempty" toml:"alpha_min" yaml:"alpha_min,omitempty"`
	AlphaDecay     float64 `json:"alpha_decay,omitempty" toml:"alpha_decay" yaml:"alpha_decay,omitempty"`
	VelocityDecay  float64 `json:"velocity_decay,omitempty" toml:"velocity_decay" yaml:"velocity_decay,omitempty"`
	Theta          float64 `json:"theta,omitempty" toml:"theta" yaml:"theta,omitempty"`
	Seed           uint64  `json:"seed,omitempty" toml:"seed" yaml:"seed,omitempty"`
	MaxTicks       int     `json:"max_ticks,omitempty" toml:"max_ticks" yaml:"max_ticks,omitempty"`

	// Interaction options
	MinScale float64 `json:"min_scale,omitempty" toml:"min_scale" yaml:"min_scale,omitempty"`
	MaxScale float64 `json:"max_scale,omitempty" toml:"max_scale" yaml:"max_scale,omitempty"`
	Zoom     *bool   `json:"zoom,omitempty" toml:"zoom" yaml:"zoom,omitempty"`
	Drag     *bool   `json:"drag,omitempty" toml:"drag" yaml:"drag,omitempty"`
	Tooltip  *bool   `json:"tooltip,omitempty" toml:"tooltip" yaml:"tooltip,omitempty"`

	// Render options
	NodeRadius  float64  `json:"node_radius,omitempty" toml:"node_radius" yaml:"node_radius,omitempty"` // constant radius; 0 uses size||12
	Animate     *bool    `json:"animate,omitempty" toml:"animate" yaml:"animate,omitempty"`
	Labels      bool     `json:"labels,omitempty" toml:"labels" yaml:"labels,omitempty"`
	Theme       string   `json:"theme,omitempty" toml:"theme" yaml:"theme,omitempty"`
	Scheme      string   `json:"scheme,omitempty" toml:"scheme" yaml:"scheme,omitempty"`
	Formats     []string `json:"formats,omitempty" toml:"formats" yaml:"formats,omitempty"`
	Title       string   `json:"title,omitempty" toml:"title" yaml:"title,omitempty"`
	Scale       float64  `json:"scale,omitempty" toml:"scale" yaml:"scale,omitempty"`
	Fit         bool     `json:"fit,omitempty" toml:"fit" yaml:"fit,omitempty"`
	Transparent bool     `json:"transparent,omitempty" toml:"transparent" yaml:"transparent,omitempty"`
	Directed    bool     `json:"directed,omitempty" toml:"directed" yaml:"directed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-" yaml:"-"`

	// validated tracks whether ValidateAndSetDefaults has succeeded.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Layout contains the converged positions.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	LinkCount  int
	Ticks      int
	Converged  bool
	LayoutTime time.Duration
	RenderTime time.Duration

	// LayoutCached is set when the layout came from the runner's cache.
	LayoutCached bool
}

// Bool returns a pointer to v, for the tri-state enable flags.
func Bool(v bool) *bool { return &v }

func enabled(p *bool) bool { return p == nil || *p }

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills every unset field. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Charge == 0 && o.ChargePerSize == 0 {
		o.ChargePerSize = DefaultChargePerSize
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.MaxTicks == 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if o.MinScale == 0 {
		o.MinScale = interact.DefaultMinScale
	}
	if o.MaxScale == 0 {
		o.MaxScale = interact.DefaultMaxScale
	}
	if o.Zoom == nil {
		o.Zoom = Bool(true)
	}
	if o.Drag == nil {
		o.Drag = Bool(true)
	}
	if o.Tooltip == nil {
		o.Tooltip = Bool(true)
	}
	if o.Animate == nil {
		o.Animate = Bool(true)
	}
	if o.Theme == "" {
		o.Theme = render.Light.Name
	}
	if o.Scheme == "" {
		o.Scheme = "category10"
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate applies defaults and checks every field that has no sensible
// repair: dimensions, solver tuning, theme, scheme, formats and zoom range.
func (o *Options) Validate() error {
	o.SetDefaults()
	if err := o.ForceConfig().Validate(); err != nil {
		return err
	}
	if o.MaxTicks < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max ticks must be non-negative, got %d", o.MaxTicks)
	}
	if _, err := render.ThemeByName(o.Theme); err != nil {
		return err
	}
	if _, err := render.SchemeByName(o.Scheme); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := errors.ValidateScaleRange(o.MinScale, o.MaxScale); err != nil {
		return err
	}
	if o.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidScale, "PNG scale must be positive, got %v", o.Scale)
	}
	if o.NodeRadius < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "node radius must be non-negative, got %v", o.NodeRadius)
	}
	return nil
}

// ValidateAndSetDefaults is Validate, remembered so repeated calls by the
// stages of one run are free.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// HasFormat reports whether format is requested.
func (o *Options) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}

// ForceConfig maps the options to solver parameters. Per-node charge
// follows the size rule unless a constant charge is set.
func (o *Options) ForceConfig() force.Config {
	cfg := force.Config{
		Width:          o.Width,
		Height:         o.Height,
		Theta:          o.Theta,
		CenterStrength: o.CenterStrength,
		AlphaMin:       o.AlphaMin,
		AlphaDecay:     o.AlphaDecay,
		VelocityDecay:  o.VelocityDecay,
		Seed:           o.Seed,
	}
	switch {
	case o.Charge != 0:
		cfg.Charge = graph.ConstNode(o.Charge)
	case o.ChargePerSize != 0:
		cfg.Charge = graph.SizeScaled(-o.ChargePerSize, graph.DefaultNodeSize)
	}
	if o.LinkDistance > 0 {
		cfg.LinkDistance = graph.ConstLink(o.LinkDistance)
	}
	if o.LinkStrength > 0 {
		cfg.LinkStrength = graph.ConstLink(o.LinkStrength)
	}
	return cfg
}

// RenderOptions maps the options to binder settings.
func (o *Options) RenderOptions() (render.Options, error) {
	theme, err := render.ThemeByName(o.Theme)
	if err != nil {
		return render.Options{}, err
	}
	scheme, err := render.SchemeByName(o.Scheme)
	if err != nil {
		return render.Options{}, err
	}
	ro := render.Options{
		Theme:      theme,
		Scheme:     scheme,
		ShowLabels: o.Labels,
		Animate:    enabled(o.Animate),
	}
	if o.NodeRadius > 0 {
		ro.NodeRadius = graph.ConstNode(o.NodeRadius)
	}
	return ro, nil
}

// InteractOptions maps the options to controller settings.
func (o *Options) InteractOptions() interact.Options {
	ia := interact.DefaultOptions()
	ia.Zoom = enabled(o.Zoom)
	ia.Drag = enabled(o.Drag)
	ia.Tooltip = enabled(o.Tooltip)
	if o.MinScale > 0 {
		ia.MinScale = o.MinScale
	}
	if o.MaxScale > 0 {
		ia.MaxScale = o.MaxScale
	}
	return ia
}

// EngineOptions assembles the settings for an interactive engine. The
// caller supplies the scheduler and callbacks.
func (o *Options) EngineOptions() (engine.Options, error) {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return engine.Options{}, err
	}
	ro, err := o.RenderOptions()
	if err != nil {
		return engine.Options{}, err
	}
	return engine.Options{
		Force:    o.ForceConfig(),
		Render:   ro,
		Interact: o.InteractOptions(),
		Logger:   o.Logger,
	}, nil
}

// layoutKeyOpts collects the options that change a computed layout.
func (o *Options) layoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:          o.Width,
		Height:         o.Height,
		Charge:         o.Charge,
		ChargePerSize:  o.ChargePerSize,
		LinkDistance:   o.LinkDistance,
		LinkStrength:   o.LinkStrength,
		CenterStrength: o.CenterStrength,
		AlphaMin:       o.AlphaMin,
		AlphaDecay:     o.AlphaDecay,
		VelocityDecay:  o.VelocityDecay,
		Theta:          o.Theta,
		Seed:           o.Seed,
		MaxTicks:       o.MaxTicks,
		NodeRadius:     o.NodeRadius,
		Theme:          o.Theme,
		Scheme:         o.Scheme,
	}
}

// artifactKeyOpts collects the options that change one rendered format.
func (o *Options) artifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Theme:       o.Theme,
		Title:       o.Title,
		Scale:       o.Scale,
		Labels:      o.Labels,
		Tooltip:     enabled(o.Tooltip),
		Fit:         o.Fit,
		Transparent: o.Transparent,
		Directed:    o.Directed,
	}
}
