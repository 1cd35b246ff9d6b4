package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clusterflow/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "clusterflow lays out diagrams with nested clusters",
		Long: `clusterflow computes layouts for flowchart-style diagrams whose nodes may be
grouped into nested clusters. Clusters without external edges are laid out
recursively as their own subgraphs; the rest are laid out in place.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			if c.timeout < 0 {
				return fmt.Errorf("invalid --timeout %s", c.timeout)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/clusterflow/config.toml)")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 0, "abort after this duration (0 = no limit)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// versionCommand prints build information.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), StyleTitle.Render(appName))
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
