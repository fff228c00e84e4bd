package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/render"
	"github.com/matzehuels/forcegraph/pkg/render/nodelink"
	"github.com/matzehuels/forcegraph/pkg/render/sink"
)

// RenderFromLayout renders every requested format from a layout. Render
// hooks fire around each format.
func RenderFromLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	opts.SetDefaults()
	f, err := frameFor(l, opts)
	if err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hooks := observability.Render()
		hooks.OnRenderStart(ctx, format)
		start := time.Now()

		var data []byte
		switch format {
		case FormatSVG:
			data = sink.RenderSVG(f, svgOptions(opts)...)
		case FormatPNG:
			data, err = sink.RenderPNG(f, pngOptions(opts)...)
		case FormatJSON:
			data, err = sink.RenderJSON(f)
		case FormatDOT, FormatDOTSVG, FormatDOTPNG:
			if dot == "" {
				dot = nodelink.ToDOT(f, nodelink.Options{Labels: opts.Labels, Directed: opts.Directed})
			}
			switch format {
			case FormatDOT:
				data = []byte(dot)
			case FormatDOTSVG:
				data, err = nodelink.RenderSVG(ctx, dot)
			default:
				data, err = nodelink.RenderPNG(ctx, dot)
			}
		default:
			err = ValidateFormat(format)
		}

		hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		opts.Logger.Debug("rendered", "format", format, "bytes", len(data), "duration", time.Since(start))
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFromLayoutData renders output from serialized layout data.
// This is useful when the layout was computed by an earlier run.
func RenderFromLayoutData(ctx context.Context, layoutData []byte, opts Options) (map[string][]byte, error) {
	parsed, err := graph.UnmarshalLayout(layoutData)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return RenderFromLayout(ctx, parsed, applyLayoutMetadata(opts, parsed))
}

// frameFor rebuilds a drawable frame, applying the requested theme and
// view fitting.
func frameFor(l graph.Layout, opts Options) (*render.Frame, error) {
	theme, err := render.ThemeByName(opts.Theme)
	if err != nil {
		return nil, err
	}
	f := render.FromLayout(l)
	if f.Theme.Name != theme.Name {
		f.Theme = theme
		for i := range f.Circles {
			f.Circles[i].Stroke = theme.NodeStroke
		}
		for i := range f.Lines {
			if l.Links[i].Color == "" {
				f.Lines[i].Stroke = theme.LinkStroke
			}
		}
	}
	f.ShowLabels = opts.Labels
	if opts.Fit {
		f.Fit(DefaultFitPadding)
	}
	return f, nil
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Title != "" {
		out = append(out, sink.WithTitle(opts.Title))
	}
	if opts.Transparent {
		out = append(out, sink.WithTransparent())
	}
	if enabled(opts.Tooltip) {
		out = append(out, sink.WithHoverCSS())
	}
	return out
}

func pngOptions(opts Options) []sink.PNGOption {
	out := []sink.PNGOption{sink.WithScale(opts.Scale)}
	if opts.Transparent {
		out = append(out, sink.WithPNGTransparent())
	}
	return out
}

// applyLayoutMetadata fills options the caller left unset from the layout,
// so a serialized layout renders with its original settings.
func applyLayoutMetadata(opts Options, l graph.Layout) Options {
	if opts.Theme == "" && l.Theme != "" {
		opts.Theme = l.Theme
	}
	if opts.Width == 0 {
		opts.Width = l.Width
	}
	if opts.Height == 0 {
		opts.Height = l.Height
	}
	return opts
}
