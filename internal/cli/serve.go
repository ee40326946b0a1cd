package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/islandlink/pkg/api"
	"github.com/matzehuels/islandlink/pkg/cache"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes the solver over HTTP:

  GET  /healthz          liveness and version
  POST /v1/solve         solve JSON island groups
  GET  /v1/runs          recent runs (requires history)
  GET  /v1/runs/{id}     one stored run

The server shares the configured cache with the CLI; API entries are kept
under their own key prefix.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			ch, err := c.openCache(ctx, noCache)
			if err != nil {
				return err
			}
			runner := c.runnerFor(ch, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:"))
			defer runner.Close()

			var history api.History
			db, err := c.openHistory(noHistory)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
				history = db
			}

			srv := api.New(runner, history, c.Logger, api.Options{
				MaxSites: c.Config.MaxSites,
				Labels:   c.Config.Render.Labels,
				Scale:    c.Config.Render.Scale,
			})
			c.Logger.Info("serving", "addr", addr, "cache", c.Config.Cache.Backend, "history", history != nil)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record runs")

	return cmd
}
