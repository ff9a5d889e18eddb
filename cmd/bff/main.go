// Voyage storefront BFF - serves the mobile and web clients from the
// Shopify Admin API with an in-process or Redis-backed cart.
// Designed for Cloud Run deployment.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"voyage-bff/internal/adapter"
	"voyage-bff/internal/cache"
	"voyage-bff/internal/cart"
	"voyage-bff/internal/checkout"
	"voyage-bff/internal/config"
	"voyage-bff/internal/handler"
	"voyage-bff/internal/middleware"
	"voyage-bff/internal/shopify"
	"voyage-bff/internal/transport"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := config.Flags()
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parsing flags: %w", err)
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx, flags)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := initLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.String("store_domain", cfg.Shopify.StoreDomain),
		slog.String("api_version", cfg.Shopify.APIVersion),
		slog.Bool("redis", cfg.Redis.URL != ""),
		slog.Bool("tls_fingerprint", cfg.Shopify.TLSFingerprint),
	)

	httpHandler, cleanup, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("addr", server.Addr),
		)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// buildHandler wires the catalog, cart and checkout services behind the
// middleware chain. The returned cleanup releases the Redis connection.
func buildHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (http.Handler, func(), error) {
	client, err := shopify.New(shopify.Config{
		StoreDomain:     cfg.Shopify.StoreDomain,
		AccessToken:     cfg.Shopify.AccessToken,
		APIVersion:      cfg.Shopify.APIVersion,
		LensProductType: cfg.Shopify.LensProductType,
		Timeout:         cfg.Shopify.Timeout,
		Transport:       transport.New(cfg.Shopify.Timeout, cfg.Shopify.TLSFingerprint),
		Logger:          logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating shopify client: %w", err)
	}

	var catalog adapter.Catalog = shopify.NewAdapter(client, logger)
	var store cart.Store
	cleanup := func() {}

	if cfg.Redis.URL != "" {
		rdb, err := connectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() { rdb.Close() }

		catalog = cache.NewCatalog(catalog, rdb, cfg.Redis.CacheTTL, logger)
		store = cart.NewRedisStore(rdb, cfg.Cart.TTL)
		logger.Info("redis enabled for carts and catalog cache")
	} else {
		store = cart.NewMemoryStore(cfg.Cart.MaxCarts, cfg.Cart.TTL)
	}

	carts := cart.NewService(store, logger)
	checkoutSvc := checkout.NewService(carts, checkout.Config{
		StorefrontURL: cfg.Checkout.URL,
		GoKwikURL:     cfg.Checkout.GoKwikURL,
		OrderPrefix:   cfg.Checkout.OrderPrefix,
	}, logger)

	h := handler.New(catalog, carts, checkoutSvc, cfg.Shopify.StoreDomain, logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	// Recovery must be outermost to catch panics from the other middleware
	return middleware.Chain(
		middleware.Recovery(logger),
		middleware.Logging(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)(mux), cleanup, nil
}

func connectRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return rdb, nil
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
