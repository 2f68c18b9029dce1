package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/osamo/dreamshops/internal/cache"
	"github.com/osamo/dreamshops/internal/config"
	"github.com/osamo/dreamshops/internal/event"
	handler "github.com/osamo/dreamshops/internal/handler/http"
	"github.com/osamo/dreamshops/internal/repository/postgres"
	"github.com/osamo/dreamshops/internal/service"
	"github.com/osamo/dreamshops/migrations"
	"github.com/osamo/dreamshops/pkg/database"
	"github.com/osamo/dreamshops/pkg/health"
	pkgkafka "github.com/osamo/dreamshops/pkg/kafka"
	"github.com/osamo/dreamshops/pkg/middleware"
	"github.com/osamo/dreamshops/pkg/tracing"
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	tracerShutdown func(context.Context) error
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// Kafka and Redis are only connected when enabled in cfg.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.closeResources()
		}
	}()

	// Initialize tracing.
	a.tracerShutdown, err = tracing.InitTracer(ctx, tracing.Config{
		ServiceName:  config.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTELEndpoint,
		SampleRate:   cfg.OTELSampleRate,
		Enabled:      cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.Postgres()
	a.pool, err = database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	// Run database migrations.
	if err = database.RunMigrations(ctx, a.pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Metrics registry.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err = database.RegisterPoolMetrics(reg, a.pool, config.ServiceName); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}
	httpMetrics, err := middleware.NewHTTPMetrics(reg, config.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("register http metrics: %w", err)
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return a.pool.Ping(ctx)
	})

	// Event publishing.
	var publisher event.Publisher = event.Nop{}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		reg.MustRegister(a.producer.Collectors()...)
		healthHandler.RegisterOptional("kafka", a.producer.Ping)
		publisher = event.NewProducer(a.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Product cache.
	var productCache cache.ProductCache = cache.Nop{}
	if cfg.RedisEnabled {
		a.rdb, err = database.NewRedisClient(ctx, cfg.Redis())
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		redisCache := cache.NewRedisProductCache(a.rdb, cfg.ProductCacheTTL())
		reg.MustRegister(redisCache.Collectors()...)
		healthHandler.RegisterOptional("redis", func(ctx context.Context) error {
			return a.rdb.Ping(ctx).Err()
		})
		productCache = redisCache
		logger.Info("connected to Redis",
			slog.String("addr", cfg.Redis().Addr()),
			slog.Int("db", cfg.RedisDB),
		)
	}

	// Build the dependency graph.
	categoryRepo := postgres.NewCategoryRepository(a.pool)
	productRepo := postgres.NewProductRepository(a.pool)
	imageRepo := postgres.NewImageRepository(a.pool)
	tx := postgres.NewTransactor(a.pool)

	categoryService := service.NewCategoryService(categoryRepo, productCache, publisher, logger)
	productService := service.NewProductService(service.ProductServiceDeps{
		Products:     productRepo,
		Categories:   categoryRepo,
		Images:       imageRepo,
		Tx:           tx,
		Cache:        productCache,
		Publisher:    publisher,
		ImageBaseURL: cfg.ImageBaseURL(),
	}, logger)
	imageService := service.NewImageService(service.ImageServiceDeps{
		Images:       imageRepo,
		Products:     productRepo,
		Tx:           tx,
		Publisher:    publisher,
		ImageBaseURL: cfg.ImageBaseURL(),
		MaxBytes:     cfg.MaxUploadBytes,
	}, logger)

	// HTTP router.
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	}

	router := handler.NewRouter(handler.RouterConfig{
		ServiceName:    config.ServiceName,
		APIPrefix:      cfg.APIPrefix,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Categories:     categoryService,
		Products:       productService,
		Images:         imageService,
		Health:         healthHandler,
		Metrics:        httpMetrics,
		Gatherer:       reg,
		RateLimit:      limiter,
		CORS:           cors,
		PprofCIDRs:     cfg.PprofAllowedCIDRs,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("api_prefix", a.cfg.APIPrefix),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeResources()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources()

	a.logger.Info("application shutdown complete")
	return nil
}

// closeResources releases every connection that has been opened. It is safe
// to call on a partially built App.
func (a *App) closeResources() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	if a.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
