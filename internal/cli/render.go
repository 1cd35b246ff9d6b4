package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clusterflow/pkg/pipeline"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		f       layoutFlags
		formats string
	)

	cmd := &cobra.Command{
		Use:   "render [diagram.json|-]",
		Short: "Render a diagram to SVG and/or layout JSON",
		Long: `Render a diagram to SVG and/or layout JSON.

Outputs are written next to the input as <name>.svg and <name>.layout.json,
or to <output>.svg / <output>.layout.json when -o is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.opts.Formats = parseFormats(formats)
			if err := pipeline.ValidateFormats(f.opts.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], f)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&formats, "format", "f", "svg", "output formats, comma separated: svg, json")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(pipeline.ValidFormats, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, f layoutFlags) error {
	res, err := c.execute(ctx, input, f, true)
	if err != nil {
		return err
	}

	base := outputBase(input, f.output)
	printSuccess("Rendered %s", res.Layout.ID)
	for _, format := range f.opts.Formats {
		path := base + extension(format)
		if err := os.WriteFile(path, res.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(res)
	return nil
}

func extension(format string) string {
	if format == pipeline.FormatJSON {
		return ".layout.json"
	}
	return "." + format
}
