package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/clusterflow/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Routes:
  POST /v1/layout   {"diagram": {...}, "options": {...}} -> layout JSON
  POST /v1/render   same body -> SVG
  GET  /healthz

The cache backend and request timeout come from the config file; use a
redis backend to share layouts between replicas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			timeout := cfg.Server.Timeout.Duration
			if c.timeout > 0 {
				timeout = c.timeout
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Serving on %s (cache: %s)", addr, cfg.Cache.Backend)
			srv := server.New(runner, server.Options{Timeout: timeout, Logger: c.Logger})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}
