package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/glyphtools/internal/api"
	"github.com/matzehuels/glyphtools/pkg/cache"
	"github.com/matzehuels/glyphtools/pkg/store"
)

const serveKeyPrefix = "glyphtools:api:"

// serveFlags holds flags for the serve command.
type serveFlags struct {
	addr     string
	redisURL string
	mongoURI string
	noCache  bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	flags := serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long: `Run the HTTP service for translating, encoding and decoding compositions.

Translations are cached in Redis when a URL is configured, in the local cache
directory otherwise. Stored compositions go to MongoDB when a URI is
configured and are kept in memory otherwise.`,
		Example: `  glyphtools serve --addr :8080
  GLYPHTOOLS_MONGO_URI=mongodb://localhost:27017 glyphtools serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = flags.addr
			}
			if cmd.Flags().Changed("redis") {
				c.Config.Cache.RedisURL = flags.redisURL
			}
			if cmd.Flags().Changed("mongo") {
				c.Config.Server.MongoURI = flags.mongoURI
			}
			return c.runServe(cmd.Context(), flags.noCache)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (default: config server.addr)")
	cmd.Flags().StringVar(&flags.redisURL, "redis", "", "Redis URL for the translate cache")
	cmd.Flags().StringVar(&flags.mongoURI, "mongo", "", "MongoDB URI for stored compositions")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()
	// Service entries live next to CLI entries when both share one Redis.
	runner.Keyer = cache.NewScopedKeyer(nil, serveKeyPrefix)

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := api.New(runner, st, c.Logger)
	if c.Config.Server.MaxBody > 0 {
		srv.MaxBody = c.Config.Server.MaxBody
	}
	return srv.ListenAndServe(ctx, c.Config.Server.Addr)
}

func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Server
	if cfg.MongoURI == "" {
		c.Logger.Info("storing compositions in memory")
		return store.NewMemoryStore(), nil
	}

	var ms *store.MongoStore
	err := connectWithRetry(ctx, c.Logger, "mongodb", func(ctx context.Context) error {
		var err error
		ms, err = store.NewMongoStore(ctx, cfg.MongoURI, cfg.Database, cfg.Collection)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.Logger.Info("storing compositions in MongoDB", "database", cfg.Database, "collection", cfg.Collection)
	return ms, nil
}
