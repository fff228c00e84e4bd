package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering a layout file.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
	)
	defaults := defaultOptions()

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render a computed layout",
		Long: `Render a computed layout.

The visualize command takes a layout.json file (produced by 'layout') and
renders it without running the simulation. Theme and size default to the
ones the layout was computed with.

Use 'render' as a shortcut to go directly from graph data to visual output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.overlayOptions(cmd, bindStyleFlags, bindRenderFlags)
			if err != nil {
				return err
			}
			if err := applyFormats(cmd, formatsStr, &opts); err != nil {
				return err
			}
			in, err := pipeline.LoadContext(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !in.IsLayout() {
				return errors.New(errors.ErrCodeInvalidInput, "%s is graph data, not a layout (use 'render' or run 'layout' first)", args[0])
			}
			return c.renderLayout(cmd.Context(), in, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s), comma-separated: "+formatList())
	bindStyleFlags(cmd.Flags(), defaults)
	bindRenderFlags(cmd.Flags(), defaults)

	return cmd
}
