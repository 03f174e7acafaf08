package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/molsearch/internal/application/convert"
	"github.com/turtacn/molsearch/internal/application/search"
	"github.com/turtacn/molsearch/internal/config"
	"github.com/turtacn/molsearch/internal/domain/chem"
	"github.com/turtacn/molsearch/internal/format"
	"github.com/turtacn/molsearch/internal/infrastructure/database/postgres"
	"github.com/turtacn/molsearch/internal/infrastructure/database/postgres/repositories"
	redisdb "github.com/turtacn/molsearch/internal/infrastructure/database/redis"
	"github.com/turtacn/molsearch/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/turtacn/molsearch/internal/interfaces/http"
	"github.com/turtacn/molsearch/internal/interfaces/http/handlers"
	"github.com/turtacn/molsearch/internal/interfaces/http/middleware"
	"github.com/turtacn/molsearch/internal/sources"
	"github.com/turtacn/molsearch/internal/sources/chembl"
	"github.com/turtacn/molsearch/internal/sources/pubchem"
)

// NewServeCmd creates the serve command running the API server in-process.
func NewServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the molsearch API server",
		Long:  "Serve runs database migrations, assembles every configured component\n(postgres, redis cache, kafka producer, compound sources, metrics) and\nlistens until SIGINT or SIGTERM.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runServe(cliCtx.Config, skipMigrations)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not run database migrations on startup")

	return cmd
}

func runServe(cfg *config.Config, skipMigrations bool) error {
	// The server logs per its own config, not the CLI's console/stderr setup.
	output := cfg.Log.Output
	if output == "" {
		output = "stdout"
	}
	log, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: []string{output},
	})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !skipMigrations {
		if err := postgres.RunMigrations(cfg.Database, log); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()

	repoLog := &repoLogAdapter{log: log.Named("repo")}
	molRepo := repositories.NewMoleculeRepository(pool, repoLog)
	histRepo := repositories.NewHistoryRepository(pool, repoLog)

	// Optional components.
	var (
		cache       redisdb.Cache
		redisClient *redisdb.Client
	)
	if cfg.Redis.Enabled {
		redisClient, err = redisdb.NewClient(cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer redisClient.Close()

		var cacheOpts []redisdb.CacheOption
		if cfg.Redis.KeyPrefix != "" {
			cacheOpts = append(cacheOpts, redisdb.WithPrefix(cfg.Redis.KeyPrefix))
		}
		if cfg.Redis.DefaultTTL > 0 {
			cacheOpts = append(cacheOpts, redisdb.WithDefaultTTL(cfg.Redis.DefaultTTL))
		}
		cache = redisdb.NewCache(redisClient, log, cacheOpts...)
	}

	var publisher search.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(cfg.Kafka, log)
		if err != nil {
			return fmt.Errorf("connecting to kafka: %w", err)
		}
		defer producer.Close()
		publisher = producer
	}

	var srcs []sources.Source
	if cfg.Sources.PubChem.Enabled {
		srcs = append(srcs, pubchem.NewClient(pubchem.Config{
			BaseURL: cfg.Sources.PubChem.BaseURL,
			Timeout: cfg.Sources.PubChem.Timeout,
			MaxHits: cfg.Sources.PubChem.MaxHits,
		}, log))
	}
	if cfg.Sources.ChEMBL.Enabled {
		srcs = append(srcs, chembl.NewClient(chembl.Config{
			BaseURL: cfg.Sources.ChEMBL.BaseURL,
			Timeout: cfg.Sources.ChEMBL.Timeout,
			MaxHits: cfg.Sources.ChEMBL.MaxHits,
		}, log))
	}

	var (
		appMetrics     *prometheus.AppMetrics
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace: cfg.Metrics.Namespace,
		}, log)
		if err != nil {
			return fmt.Errorf("building metrics collector: %w", err)
		}
		appMetrics = prometheus.NewAppMetrics(collector)
		metricsHandler = collector.Handler()
	}

	// Application services.
	recorder := search.NewRecorder(histRepo, publisher, appMetrics, log)
	searchSvc := search.NewService(search.Config{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
		CacheTTL:     cfg.Search.CacheTTL,
		HistoryLimit: cfg.Search.HistoryLimit,
	}, molRepo, histRepo, srcs, recorder, cache, appMetrics, log)

	embed := chem.DefaultEmbedOptions()
	if cfg.Chem.EmbedSeed != 0 {
		embed.Seed = cfg.Chem.EmbedSeed
	}
	if cfg.Chem.MinimizeIters > 0 {
		embed.MinimizeIters = cfg.Chem.MinimizeIters
	}
	convertSvc := convert.NewService(format.NewExporter(embed, log), appMetrics, log)

	// HTTP surface.
	checkers := []handlers.HealthChecker{
		handlers.NewCheck("postgres", func(ctx context.Context) error {
			return postgres.HealthCheck(ctx, pool)
		}),
	}
	if redisClient != nil {
		checkers = append(checkers, handlers.NewCheck("redis", redisClient.HealthCheck))
	}

	var limiter middleware.RateLimiter
	rlCfg := middleware.DefaultRateLimitConfig()
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.RequestsPerMinute > 0 {
			rlCfg.RequestsPerSecond = float64(cfg.RateLimit.RequestsPerMinute) / 60
		}
		if cfg.RateLimit.Burst > 0 {
			rlCfg.BurstSize = cfg.RateLimit.Burst
		}
		tbl := middleware.NewTokenBucketLimiter(rlCfg.RequestsPerSecond, rlCfg.BurstSize, rlCfg.CleanupInterval)
		defer tbl.Stop()
		limiter = tbl
	}

	router := httpiface.NewRouter(httpiface.RouterConfig{
		Search:         handlers.NewSearchHandler(searchSvc, log),
		Convert:        handlers.NewConvertHandler(convertSvc, log),
		Health:         handlers.NewHealthHandler(config.Version, appMetrics, checkers...),
		MetricsHandler: metricsHandler,
		Metrics:        appMetrics,
		RateLimiter:    limiter,
		RateLimit:      rlCfg,
		Logger:         log,
		CORS:           middleware.DefaultCORSConfig(),
		Mode:           cfg.Server.Mode,
	})

	server := httpiface.NewServer(cfg.Server, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return <-errCh
}

// repoLogAdapter bridges the keys-and-values repository logging contract onto
// the field-based service logger.
type repoLogAdapter struct {
	log logging.Logger
}

func (a *repoLogAdapter) Debug(msg string, kv ...interface{}) { a.log.Debug(msg, kvFields(kv)...) }
func (a *repoLogAdapter) Info(msg string, kv ...interface{})  { a.log.Info(msg, kvFields(kv)...) }
func (a *repoLogAdapter) Warn(msg string, kv ...interface{})  { a.log.Warn(msg, kvFields(kv)...) }
func (a *repoLogAdapter) Error(msg string, kv ...interface{}) { a.log.Error(msg, kvFields(kv)...) }

func kvFields(kv []interface{}) []logging.Field {
	fields := make([]logging.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kv[i])
		}
		fields = append(fields, logging.Any(key, kv[i+1]))
	}
	return fields
}
