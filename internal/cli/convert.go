package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	fgio "github.com/matzehuels/forcegraph/pkg/io"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// convertCommand converts graph data between JSON and YAML.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		to     string
		output string
	)

	cmd := &cobra.Command{
		Use:   "convert [graph.json|graph.yaml|layout.json]",
		Short: "Convert graph data between JSON and YAML",
		Long: `Convert graph data between JSON and YAML.

A layout file converts to graph data whose nodes start at the laid out
positions, so 'view' and 'serve' open it settled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := pipeline.LoadContext(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output != "" && output != "-" {
				if err := fgio.ExportFile(in.Graph, output); err != nil {
					return err
				}
				c.Logger.Debug("converted", "from", args[0], "to", output)
				printSuccess("Converted %d nodes and %d links", len(in.Graph.Nodes), len(in.Graph.Links))
				printFile(output)
				return nil
			}
			w, err := openOutput(output)
			if err != nil {
				return err
			}
			defer w.Close()
			if err := fgio.Write(in.Graph, w, fgio.Format(to)); err != nil {
				return fmt.Errorf("write %s: %w", to, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; its extension picks the format (default: stdout)")
	cmd.Flags().StringVarP(&to, "to", "t", string(fgio.FormatYAML), "format for stdout: json, yaml")

	return cmd
}
