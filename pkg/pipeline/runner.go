package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/graph"
)

// Runner executes pipeline stages, consulting a cache before each one.
//
// The Runner is stateless except for its cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects cache.NewDefaultKeyer and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Close releases the cache.
func (r *Runner) Close() error { return r.Cache.Close() }

// Execute runs the complete layout → render pipeline for g.
func (r *Runner) Execute(ctx context.Context, g graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		GraphHash: g.Hash(),
		Stats: Stats{
			NodeCount: len(g.Nodes),
			LinkCount: len(g.Links),
		},
	}

	// Stage 1: Layout
	layoutStart := time.Now()
	layout, hit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.Ticks = layout.Ticks
	result.Stats.Converged = layout.Converged
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.LayoutCached = hit

	r.Logger.Info("computed layout",
		"nodes", len(layout.Nodes),
		"links", len(layout.Links),
		"ticks", layout.Ticks,
		"converged", layout.Converged,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout runs the solver headless until it converges, honoring ctx
// between ticks.
func (r *Runner) Layout(ctx context.Context, g graph.Graph, opts Options) (graph.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return l, err
}

// LayoutWithCacheInfo is Layout, also reporting whether the layout came
// from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g graph.Graph, opts Options) (graph.Layout, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Layout{}, false, err
	}
	r.applyLogger(&opts)

	key := r.Keyer.LayoutKey(g.Hash(), opts.layoutKeyOpts())
	if data, ok, err := r.Cache.Get(ctx, key); err != nil {
		r.Logger.Debug("layout cache read failed", "err", err)
	} else if ok {
		if l, err := graph.UnmarshalLayout(data); err == nil {
			r.Logger.Debug("layout cache hit", "key", key)
			return l, true, nil
		}
	}

	l, err := GenerateLayout(ctx, g, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}
	if data, err := graph.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Debug("layout cache write failed", "err", err)
		}
	}
	return l, false, nil
}

// Render generates artifacts for every requested format from a layout.
// Formats found in the cache are not rendered again.
func (r *Runner) Render(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, error) {
	opts = applyLayoutMetadata(opts, layout)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	data, err := graph.MarshalLayout(layout)
	if err != nil {
		return nil, err
	}
	layoutHash := cache.Hash(data)

	artifacts := make(map[string][]byte, len(opts.Formats))
	keys := make(map[string]string, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.artifactKeyOpts(format))
		keys[format] = key
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			artifacts[format] = data
			continue
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, nil
	}

	sub := opts
	sub.Formats = missing
	rendered, err := RenderFromLayout(ctx, layout, sub)
	if err != nil {
		return nil, err
	}
	for format, data := range rendered {
		artifacts[format] = data
		if err := r.Cache.Set(ctx, keys[format], data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("artifact cache write failed", "format", format, "err", err)
		}
	}
	return artifacts, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
