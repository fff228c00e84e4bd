package cli

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/forcegraph/internal/config"
	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "forcegraph"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is set by --config. Empty means discover a config file in
	// the working directory.
	configPath string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the file cache.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.newCache(), nil, c.Logger)
}

func (c *CLI) newCache() cache.Cache {
	if c.noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/forcegraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Resolution
// =============================================================================

// binder attaches option flags to fs, writing into o.
type binder func(fs *pflag.FlagSet, o *pipeline.Options)

// defaultOptions is the value flags show as their defaults.
func defaultOptions() *pipeline.Options {
	o := &pipeline.Options{}
	o.SetDefaults()
	return o
}

// loadConfig reads --config, or a config file discovered in the working
// directory, or returns empty options.
func (c *CLI) loadConfig() (pipeline.Options, error) {
	path := c.configPath
	if path == "" {
		path = config.Discover(".")
	}
	if path == "" {
		return pipeline.Options{}, nil
	}
	opts, err := config.Load(path)
	if err != nil {
		return pipeline.Options{}, err
	}
	c.Logger.Debug("loaded config", "path", path)
	return opts, nil
}

// resolveOptions layers flags over the config file over defaults. Only
// flags the user set override the file.
func (c *CLI) resolveOptions(cmd *cobra.Command, binders ...binder) (pipeline.Options, error) {
	opts, err := c.overlayOptions(cmd, binders...)
	if err != nil {
		return pipeline.Options{}, err
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// overlayOptions is resolveOptions without defaults, so options nobody set
// stay zero and can be filled from a layout file.
func (c *CLI) overlayOptions(cmd *cobra.Command, binders ...binder) (pipeline.Options, error) {
	opts, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}

	overlay := pflag.NewFlagSet("overlay", pflag.ContinueOnError)
	for _, bind := range binders {
		bind(overlay, &opts)
	}
	var setErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if setErr != nil || overlay.Lookup(f.Name) == nil {
			return
		}
		setErr = overlay.Set(f.Name, f.Value.String())
	})
	if setErr != nil {
		return pipeline.Options{}, setErr
	}
	opts.Logger = c.Logger
	return opts, nil
}

// bindLayoutFlags binds solver options.
func bindLayoutFlags(fs *pflag.FlagSet, o *pipeline.Options) {
	fs.Float64Var(&o.Width, "width", o.Width, "frame width")
	fs.Float64Var(&o.Height, "height", o.Height, "frame height")
	fs.Float64Var(&o.Charge, "charge", o.Charge, "constant charge strength (0 scales with node size)")
	fs.Float64Var(&o.ChargePerSize, "charge-per-size", o.ChargePerSize, "repulsion per unit of node size")
	fs.Float64Var(&o.LinkDistance, "link-distance", o.LinkDistance, "link rest length")
	fs.Float64Var(&o.LinkStrength, "link-strength", o.LinkStrength, "link stiffness (0 uses the degree-based default)")
	fs.Float64Var(&o.CenterStrength, "center-strength", o.CenterStrength, "centering strength")
	fs.Float64Var(&o.AlphaDecay, "alpha-decay", o.AlphaDecay, "cooling rate per tick, in (0, 1); 0 for the default")
	fs.Float64Var(&o.VelocityDecay, "velocity-decay", o.VelocityDecay, "velocity friction, in (0, 1]; 0 for the default")
	fs.Float64Var(&o.Theta, "theta", o.Theta, "Barnes-Hut accuracy; 0 for the default, negative for exact pairwise")
	fs.Uint64Var(&o.Seed, "seed", o.Seed, "random seed for initial jitter")
	fs.IntVar(&o.MaxTicks, "max-ticks", o.MaxTicks, "tick limit for headless runs (0 = until converged)")
}

// bindStyleFlags binds drawing options shared by static and live output.
func bindStyleFlags(fs *pflag.FlagSet, o *pipeline.Options) {
	fs.StringVar(&o.Theme, "theme", o.Theme, "color theme: light, dark")
	fs.StringVar(&o.Scheme, "scheme", o.Scheme, "group color scheme")
	fs.Float64Var(&o.NodeRadius, "radius", o.NodeRadius, "constant node radius (0 uses node size)")
	fs.BoolVar(&o.Labels, "labels", o.Labels, "draw node labels")
}

// bindRenderFlags binds static rendering options.
func bindRenderFlags(fs *pflag.FlagSet, o *pipeline.Options) {
	fs.StringVar(&o.Title, "title", o.Title, "drawing title")
	fs.Float64Var(&o.Scale, "scale", o.Scale, "PNG pixel density")
	fs.BoolVar(&o.Fit, "fit", o.Fit, "zoom the view to the drawing")
	fs.BoolVar(&o.Transparent, "transparent", o.Transparent, "omit the background")
	fs.BoolVar(&o.Directed, "directed", o.Directed, "draw arrowheads in DOT output")
}

// bindInteractFlags binds the interactive toggles.
func bindInteractFlags(fs *pflag.FlagSet, o *pipeline.Options) {
	fs.Float64Var(&o.MinScale, "min-scale", o.MinScale, "minimum zoom")
	fs.Float64Var(&o.MaxScale, "max-scale", o.MaxScale, "maximum zoom")
	triBoolVar(fs, &o.Zoom, "zoom", "enable wheel zoom and pan")
	triBoolVar(fs, &o.Drag, "drag", "enable node dragging")
	triBoolVar(fs, &o.Tooltip, "tooltip", "show node tooltips")
	triBoolVar(fs, &o.Animate, "animate", "animate node radii on start")
}

// triBool is a boolean flag writing into a *bool, so unset flags leave
// the option at its default.
type triBool struct{ p **bool }

func triBoolVar(fs *pflag.FlagSet, p **bool, name, usage string) {
	f := fs.VarPF(triBool{p}, name, "", usage)
	f.NoOptDefVal = "true"
}

func (b triBool) String() string {
	if *b.p == nil {
		return "true"
	}
	if **b.p {
		return "true"
	}
	return "false"
}

func (b triBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b.p = pipeline.Bool(v)
	return nil
}

func (triBool) Type() string { return "bool" }

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
