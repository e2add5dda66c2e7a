package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/msttree/internal/server"
	"github.com/matzehuels/msttree/pkg/cache"
	"github.com/matzehuels/msttree/pkg/observability"
	"github.com/matzehuels/msttree/pkg/pipeline"
	"github.com/matzehuels/msttree/pkg/store"
)

// serveOpts holds the flags of the serve command.
type serveOpts struct {
	addr     string
	redisURL string
	mongoURI string
	mongoDB  string
	dataDir  string
	metrics  bool
}

// serveCommand creates the serve command, which exposes the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080", metrics: true}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Layouts are cached in Redis when --redis is given, otherwise in the local
cache directory. Stored layouts go to MongoDB (--mongo), to one JSON file
per layout (--data-dir), or stay in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "Redis URL for the layout cache (e.g. redis://localhost:6379/0)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for stored layouts")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", store.DefaultDatabase, "MongoDB database name")
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "directory for stored layouts when MongoDB is not used")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", opts.metrics, "expose Prometheus metrics on /metrics")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	lc, err := c.serverCache(ctx, opts.redisURL)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(lc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:"), c.Logger)
	defer runner.Close()

	st, err := c.serverStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	var collector *observability.Collector
	if opts.metrics {
		collector = observability.NewCollector(appName)
		observability.SetPipelineHooks(collector)
		observability.SetCacheHooks(collector)
		observability.SetHTTPHooks(collector)
	}

	srv := server.New(server.Config{
		Runner:  runner,
		Store:   st,
		Logger:  c.Logger,
		Metrics: collector,
	})
	printInfo("Serving on %s", StyleHighlight.Render(opts.addr))
	return srv.ListenAndServe(ctx, opts.addr)
}

func (c *CLI) serverCache(ctx context.Context, redisURL string) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	if redisURL == "" {
		return newCache(false)
	}
	rc, err := cache.NewRedisCache(ctx, redisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.Logger.Info("using redis cache")
	return rc, nil
}

func (c *CLI) serverStore(ctx context.Context, opts serveOpts) (store.Store, error) {
	switch {
	case opts.mongoURI != "":
		s, err := store.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB)
		if err != nil {
			return nil, err
		}
		c.Logger.Info("using mongo store", "database", opts.mongoDB)
		return s, nil
	case opts.dataDir != "":
		s, err := store.NewFileStore(opts.dataDir)
		if err != nil {
			return nil, fmt.Errorf("open data dir: %w", err)
		}
		c.Logger.Info("using file store", "dir", s.Path())
		return s, nil
	}
	c.Logger.Warn("stored layouts are kept in memory and lost on exit")
	return store.NewMemoryStore(), nil
}
