package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// layoutCommand creates the layout command for computing converged positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string
	defaults := defaultOptions()

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Run the simulation to convergence and write the positions",
		Long: `Run the force simulation headless until it converges.

The layout command takes graph data (JSON or YAML) and writes a layout.json
file holding every node's final position and drawing attributes. The layout
can be rendered with 'visualize' or opened with 'view' without running the
solver again.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.resolveOptions(cmd, bindLayoutFlags, bindStyleFlags)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	bindLayoutFlags(cmd.Flags(), defaults)
	bindStyleFlags(cmd.Flags(), defaults)

	return cmd
}

// runLayout loads the graph, runs the solver, and writes the layout.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string) error {
	load := startStage(ctx, "load")
	in, err := pipeline.LoadContext(ctx, input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	load.end("path", in.Path, "nodes", len(in.Graph.Nodes), "links", len(in.Graph.Links))

	runner := c.newRunner()
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Simulating %d nodes...", len(in.Graph.Nodes)))
	spinner.Start()

	sim := startStage(ctx, "simulate")
	layout, cacheHit, err := runner.LayoutWithCacheInfo(ctx, in.Graph, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()
	sim.end("ticks", layout.Ticks, "converged", layout.Converged, "cached", cacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(in.Path, filepath.Ext(in.Path)) + ".layout.json"
	}
	if err := graph.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	if layout.Converged {
		printSuccess("Layout converged")
	} else {
		printWarning("Layout stopped at the tick limit before converging")
	}
	printFile(outputPath)
	printStats(len(layout.Nodes), len(layout.Links), layout.Ticks, cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}
