package cli

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/loadorder/pkg/history"
	"github.com/matzehuels/loadorder/pkg/observability"
	"github.com/matzehuels/loadorder/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		policyFlag string
		noCache    bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes the solver over HTTP:

  POST /v1/plans       resolve a descriptor set
  POST /v1/lint        lint a descriptor set
  GET  /v1/plans       list recent resolutions
  GET  /v1/plans/{id}  fetch one resolution
  GET  /metrics        Prometheus metrics
  GET  /healthz        liveness

Resolutions are recorded in MongoDB when history.mongo_uri is configured and
in memory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			policy, err := c.policy(policyFlag)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.Config.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache, policy)
			if err != nil {
				return err
			}
			defer runner.Close()

			store, err := c.newHistoryStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
			observability.SetSolverHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)

			srv := server.New(runner,
				server.WithHistory(store),
				server.WithLogger(logger),
				server.WithMetricsHandler(promhttp.Handler()),
			)

			printKeyValue("Listening", StyleLink.Render("http://"+displayAddr(addr)))
			printKeyValue("Policy", policy.String())
			printKeyValue("Cache", c.cacheBackend(noCache))
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&policyFlag, "policy", "", "match policy: id-and-range or range-only (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the plan cache")
	return cmd
}

// newHistoryStore opens MongoDB when configured and falls back to memory.
func (c *CLI) newHistoryStore(ctx context.Context) (history.Store, error) {
	cfg := c.Config.History
	if cfg.MongoURI == "" {
		return history.NewMemoryStore(cfg.Capacity), nil
	}
	spinner := newSpinner(ctx, os.Stderr, "Connecting to MongoDB...")
	spinner.Start()
	store, err := history.NewMongoStore(ctx, history.MongoOptions{
		URI:      cfg.MongoURI,
		Database: cfg.Database,
	})
	if err != nil {
		spinner.StopWithError("MongoDB unavailable")
		return nil, err
	}
	spinner.StopWithSuccess("Connected to MongoDB")
	return store, nil
}

func (c *CLI) cacheBackend(noCache bool) string {
	if noCache {
		return "none"
	}
	return c.Config.Cache.Backend
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
