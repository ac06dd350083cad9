package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/storefront-go/storefront/internal/cart"
	"github.com/storefront-go/storefront/internal/catalog"
	"github.com/storefront-go/storefront/internal/config"
	handler "github.com/storefront-go/storefront/internal/handler/http"
	"github.com/storefront-go/storefront/internal/notify"
	"github.com/storefront-go/storefront/internal/products"
	"github.com/storefront-go/storefront/internal/store"
	filestore "github.com/storefront-go/storefront/internal/store/file"
	memorystore "github.com/storefront-go/storefront/internal/store/memory"
	redisstore "github.com/storefront-go/storefront/internal/store/redis"
	"github.com/storefront-go/storefront/pkg/health"
	"github.com/storefront-go/storefront/pkg/httpclient"
	"github.com/storefront-go/storefront/pkg/middleware"
)

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg          *config.Config
	logger       *slog.Logger
	rdb          *redis.Client
	synchronizer *products.Synchronizer
	bestSellers  *products.BestSellers
	httpServer   *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Select the persistence backend for wishlist flags.
	var (
		productStore store.Store
		rdb          *redis.Client
	)
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		productStore = redisstore.New(rdb, logger)
		logger.Info("using redis product store",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
	case config.StoreBackendMemory:
		productStore = memorystore.New()
		logger.Info("using in-memory product store; wishlist flags will not survive a restart")
	default:
		fs, err := filestore.New(cfg.StorePath, logger)
		if err != nil {
			return nil, fmt.Errorf("open product store: %w", err)
		}
		productStore = fs
		logger.Info("using file product store", slog.String("path", cfg.StorePath))
	}

	// Catalog client behind a retrying HTTP client and a circuit breaker.
	hcCfg := httpclient.DefaultConfig()
	hcCfg.Timeout = time.Duration(cfg.CatalogTimeoutSeconds) * time.Second
	catalogHTTP := httpclient.NewCircuitBreakerClient(
		httpclient.New(hcCfg),
		httpclient.DefaultCircuitBreakerConfig("catalog"),
		logger,
	)
	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, catalogHTTP, logger)

	// Build the dependency graph.
	notifier := notify.New()
	synchronizer := products.NewSynchronizer(catalogClient, productStore, notifier, logger)
	bestSellers := products.NewBestSellers(catalogClient, productStore, notifier, cfg.BestSellerLimit, logger)
	aggregator := cart.New(logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("store", func(ctx context.Context) error {
		_, err := productStore.Load(ctx)
		return err
	})
	healthHandler.Register("catalog", func(ctx context.Context) error {
		if catalogHTTP.State() == gobreaker.StateOpen {
			return fmt.Errorf("catalog circuit breaker open")
		}
		return nil
	})
	if rdb != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment
	router := handler.NewRouter(synchronizer, bestSellers, aggregator, healthHandler, corsCfg, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:          cfg,
		logger:       logger,
		rdb:          rdb,
		synchronizer: synchronizer,
		bestSellers:  bestSellers,
		httpServer:   httpServer,
	}, nil
}

// Run starts the HTTP server and the wishlist re-sync loop, then blocks until
// the context is canceled.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Re-sync whenever a wishlist toggle fires the notifier. The best-sellers
	// view follows the same signal so toggled flags show up there too.
	go func() {
		if err := a.synchronizer.Run(runCtx); err != nil && runCtx.Err() == nil {
			a.logger.Error("synchronizer loop stopped", slog.String("error", err.Error()))
		}
	}()
	go func() {
		if err := a.bestSellers.Run(runCtx); err != nil && runCtx.Err() == nil {
			a.logger.Error("best sellers loop stopped", slog.String("error", err.Error()))
		}
	}()

	if a.cfg.SyncOnStart {
		go func() {
			if _, err := a.synchronizer.Sync(runCtx); err != nil {
				a.logger.Warn("initial sync failed", slog.String("error", err.Error()))
			}
			if err := a.bestSellers.Refresh(runCtx); err != nil {
				a.logger.Warn("initial best sellers refresh failed", slog.String("error", err.Error()))
			}
		}()
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
