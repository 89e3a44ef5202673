package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/topodraw/internal/server"
	"github.com/matzehuels/topodraw/pkg/cache"
	"github.com/matzehuels/topodraw/pkg/observability/metrics"
	"github.com/matzehuels/topodraw/pkg/pipeline"
)

// redisPasswordEnv names the environment variable holding the Redis password.
const redisPasswordEnv = "TOPODRAW_REDIS_PASSWORD"

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		redisAddr  string
		cacheScope string
		noCache    bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout pipeline over HTTP",
		Long: `Serve the layout pipeline over HTTP.

Topologies are POSTed as JSON or YAML to /v1/diagrams (artifact) or
/v1/layouts (diagram JSON). Prometheus metrics are exposed on /metrics.

Layouts and artifacts are cached in Redis when --redis is given, otherwise in
the local cache directory. --cache-scope prefixes every cache key so several
deployments can share one Redis.`,
		Example: `  topodraw serve --addr :8080
  topodraw serve --redis localhost:6379 --cache-scope prod
  curl --data-binary @topology.yaml 'localhost:8080/v1/diagrams?format=svg'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config.Server
			if cmd.Flags().Changed("addr") || cfg.Addr == "" {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("redis") {
				cfg.Redis = redisAddr
			}
			if cmd.Flags().Changed("cache-scope") {
				cfg.CacheScope = cacheScope
			}

			ctx := cmd.Context()
			store, err := c.serverCache(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			keyer := cache.NewDefaultKeyer()
			if cfg.CacheScope != "" {
				keyer = cache.NewScopedKeyer(keyer, cfg.CacheScope)
			}
			runner := pipeline.NewRunner(store, keyer, c.Logger)
			defer runner.Close()

			reg := metrics.NewRegistry()
			reg.Install()

			srv := server.New(server.Config{
				Addr:    cfg.Addr,
				Runner:  runner,
				Logger:  c.Logger,
				Metrics: reg,
				Timeout: timeout,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for the shared cache (password from $"+redisPasswordEnv+")")
	cmd.Flags().StringVar(&cacheScope, "cache-scope", "", "prefix for every cache key")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().DurationVar(&timeout, "timeout", server.DefaultTimeout, "per-request timeout")

	return cmd
}

// serverCache picks the cache backend for the server: Redis when an address
// is configured, the local file cache otherwise.
func (c *CLI) serverCache(ctx context.Context, cfg ServerConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Redis == "" {
		return newCache(false)
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.Redis,
		Password: os.Getenv(redisPasswordEnv),
	})
	if err != nil {
		return nil, err
	}
	c.Logger.Info("using redis cache", "addr", cfg.Redis, "scope", cfg.CacheScope)
	return rc, nil
}
