package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clusterflow/pkg/config"
	"github.com/matzehuels/clusterflow/pkg/pipeline"
)

// layoutFlags are shared by the layout and render commands.
type layoutFlags struct {
	opts    pipeline.Options
	output  string
	noCache bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output path")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.opts.Refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().StringVarP(&f.opts.Engine, "engine", "e", "", "layout engine: layered, dot (default from config)")
	cmd.Flags().Float64Var(&f.opts.NodeSpacing, "node-spacing", 0, "space between nodes of a rank")
	cmd.Flags().Float64Var(&f.opts.RankSpacing, "rank-spacing", 0, "space between ranks")
	_ = cmd.RegisterFlagCompletionFunc("engine", cobra.FixedCompletions(config.Engines, cobra.ShellCompDirectiveNoFileComp))
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [diagram.json|-]",
		Short: "Compute a layout from a diagram",
		Long: `Compute a layout from a diagram.

The layout command reads a diagram description (JSON, "-" for stdin) and
writes the positioned layout: every node with its absolute centre and size,
extracted clusters with their nested graphs, and every edge with routed
points. Pass -o - to write to stdout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.opts.Formats = []string{pipeline.FormatJSON}
			return c.runLayout(cmd.Context(), args[0], f)
		},
	}
	f.register(cmd)
	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input string, f layoutFlags) error {
	res, err := c.execute(ctx, input, f, f.output != "-")
	if err != nil {
		return err
	}

	data := res.Artifacts[pipeline.FormatJSON]
	if f.output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	path := f.output
	if path == "" {
		path = outputBase(input, "") + ".layout.json"
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}

	printSuccess("Layout complete")
	printFile(path)
	printStats(res)
	printNewline()
	printNextStep("Render", appName+" render "+input)
	return nil
}

// execute reads the diagram and runs the pipeline with a spinner.
func (c *CLI) execute(ctx context.Context, input string, f layoutFlags, interactive bool) (*pipeline.Result, error) {
	d, err := pipeline.ReadInput(input, c.Stdin)
	if err != nil {
		return nil, err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	runner, err := c.newRunner(ctx, cfg, f.noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := f.opts
	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	var spinner *Spinner
	if interactive {
		spinner = newSpinnerWithContext(ctx, "Computing layout...")
		spinner.Start()
	}
	res, err := runner.Execute(ctx, d, opts)
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Layout failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Laid out %d nodes", res.Stats.NodeCount), "cached", res.CacheInfo.LayoutHit)

	for _, de := range res.Layout.Dropped {
		if !interactive {
			break
		}
		printWarning("Dropped edge %s -> %s in cluster %s: %s", de.V, de.W, de.Cluster, de.Reason)
	}
	return res, nil
}
