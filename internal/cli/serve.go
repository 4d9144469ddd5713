package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archflow/internal/metrics"
	"github.com/matzehuels/archflow/internal/server"
	"github.com/matzehuels/archflow/pkg/buildinfo"
	"github.com/matzehuels/archflow/pkg/cache"
	"github.com/matzehuels/archflow/pkg/editor"
	"github.com/matzehuels/archflow/pkg/layout"
)

// serveOptions holds flags for the serve command.
type serveOptions struct {
	addr    string
	seed    bool
	noCache bool
}

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the editor HTTP API on the configured store.

Sessions, layout and persistence are served under /api; Prometheus metrics
under /metrics. The server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  # In-memory store with the demo workflows
  archflow serve --seed

  # SQLite store mirrored to BadgerDB, configured in archflow.toml
  archflow serve --config archflow.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&opts.seed, "seed", false, "load the demo workflows into a memory store")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOptions) error {
	cfg := c.config()
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.seed {
		cfg.Server.Seed = true
	}

	st, err := c.openStore(ctx, false)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	lc, err := c.serverCache(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer lc.Close()

	m := metrics.New()
	m.Install()

	engine := layout.New(cfg.LayoutOptions(c.Logger))
	sessions := editor.NewRegistry(st, editor.Options{
		Layouter:        layout.NewCached(engine, lc, c.keyer(), cfg.Cache.TTL.Std()),
		HistoryCapacity: cfg.History.Capacity,
		Logger:          c.Logger,
	}, cfg.Server.SessionTTL.Std())

	srv := server.New(server.Options{
		Store:    st,
		Sessions: sessions,
		Metrics:  m.Handler(),
		Logger:   c.Logger,
	})

	c.Logger.Info("starting archflow", buildinfo.Fields()...)
	printInfo("Serving %s store on %s", cfg.Store.Backend, StyleLink.Render("http://"+cfg.Server.Addr))
	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout.Std())
}

// serverCache opens the layout cache for the server. Unlike one-shot
// commands, "none" really disables caching.
func (c *CLI) serverCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.config().Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	return c.newCache(ctx, false)
}
