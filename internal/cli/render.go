package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// renderCommand creates the render command: layout and render in one step.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
	)
	defaults := defaultOptions()

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Lay out a graph and render it (shortcut for layout + visualize)",
		Long: `Lay out a graph and render it in one step.

The input is graph data (JSON or YAML) or a layout.json file. Graph data is
run through the simulation first; a layout is rendered as it is.

Formats: svg, png, json (the drawn frame), dot (Graphviz source with pinned
positions), dot-svg and dot-png (rendered by Graphviz).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Defaults are applied by the runner, after a layout input
			// has contributed its theme and size.
			opts, err := c.overlayOptions(cmd, bindLayoutFlags, bindStyleFlags, bindRenderFlags)
			if err != nil {
				return err
			}
			if err := applyFormats(cmd, formatsStr, &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s), comma-separated: "+formatList())
	bindLayoutFlags(cmd.Flags(), defaults)
	bindStyleFlags(cmd.Flags(), defaults)
	bindRenderFlags(cmd.Flags(), defaults)

	return cmd
}

// applyFormats sets opts.Formats from --format when given; otherwise the
// config file's formats (or the svg default) stand.
func applyFormats(cmd *cobra.Command, formatsStr string, opts *pipeline.Options) error {
	if cmd.Flags().Changed("format") || len(opts.Formats) == 0 {
		opts.Formats = parseFormats(formatsStr)
	}
	return pipeline.ValidateFormats(opts.Formats)
}

func formatList() string {
	return strings.Join(pipeline.FormatNames(), ", ")
}

// runRender loads the input, lays it out unless it already is a layout,
// and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string) error {
	in, err := pipeline.LoadContext(ctx, input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	if in.IsLayout() {
		c.Logger.Debug("input is a layout, skipping the simulation", "path", input)
		return c.renderLayout(ctx, in, opts, output)
	}

	runner := c.newRunner()
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Simulating %d nodes...", len(in.Graph.Nodes)))
	spinner.Start()

	run := startStage(ctx, "simulate and render")
	result, err := runner.Execute(ctx, in.Graph, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	run.end("ticks", result.Stats.Ticks, "converged", result.Stats.Converged, "formats", opts.Formats)

	if !result.Stats.Converged {
		printWarning("Layout stopped at the tick limit before converging")
	}
	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     in.Path,
		output:    output,
		cacheHit:  result.Stats.LayoutCached,
		nodes:     result.Stats.NodeCount,
		links:     result.Stats.LinkCount,
		ticks:     result.Stats.Ticks,
	})
}

// renderLayout renders a loaded layout file without simulating.
func (c *CLI) renderLayout(ctx context.Context, in pipeline.Input, opts pipeline.Options, output string) error {
	runner := c.newRunner()
	defer runner.Close()

	l := *in.Layout
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d nodes...", len(l.Nodes)))
	spinner.Start()

	draw := startStage(ctx, "render")
	artifacts, err := runner.Render(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()
	draw.end("nodes", len(l.Nodes), "formats", opts.Formats)

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     in.Path,
		output:    output,
		cacheHit:  true,
		nodes:     len(l.Nodes),
		links:     len(l.Links),
		ticks:     l.Ticks,
	})
}
