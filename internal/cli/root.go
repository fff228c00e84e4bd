package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Forcegraph lays out and explores graphs with a force simulation",
		Long: `Forcegraph runs a force-directed simulation over node-link data.

It computes converged layouts headless, renders them to SVG, PNG, JSON or
Graphviz output, explores them interactively in the terminal, and serves a
live browser view where every connection runs its own simulation.

Options come from flags, then a config file (forcegraph.toml or
forcegraph.yaml in the working directory, or --config), then defaults.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: discover forcegraph.toml or forcegraph.yaml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the layout and render cache")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
