package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dwikikusuma/nomino/internal/auth"

	cartapp "github.com/dwikikusuma/nomino/internal/cart/app"
	cartpg "github.com/dwikikusuma/nomino/internal/cart/infra/postgres"
	cartrest "github.com/dwikikusuma/nomino/internal/cart/rest"

	catalogapp "github.com/dwikikusuma/nomino/internal/catalog/app"
	catalogpg "github.com/dwikikusuma/nomino/internal/catalog/infra/postgres"
	catalogrest "github.com/dwikikusuma/nomino/internal/catalog/rest"

	checkoutapp "github.com/dwikikusuma/nomino/internal/checkout/app"
	checkoutadapter "github.com/dwikikusuma/nomino/internal/checkout/infra/adapter"
	checkoutrest "github.com/dwikikusuma/nomino/internal/checkout/rest"

	orderapp "github.com/dwikikusuma/nomino/internal/order/app"
	ordercache "github.com/dwikikusuma/nomino/internal/order/infra/cache"
	orderpg "github.com/dwikikusuma/nomino/internal/order/infra/postgres"
	orderrest "github.com/dwikikusuma/nomino/internal/order/rest"

	"github.com/dwikikusuma/nomino/pkg/config"
	"github.com/dwikikusuma/nomino/pkg/logger"
	"github.com/dwikikusuma/nomino/pkg/postgres"
	"github.com/dwikikusuma/nomino/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "api", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	if err := run(cfg, log); err != nil {
		log.Error("api stopped", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

// run owns every resource; main only turns its error into an exit code.
func run(cfg config.Config, log *slog.Logger) error {
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if cfg.MigrateOnStart {
		if err := postgres.Migrate(cfg.Postgres); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := postgres.Open(ctx, cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer pool.Close()

	// Catalog
	catalogSvc := catalogapp.NewService(catalogpg.NewProductRepo(pool))

	// Cart
	cartSvc := cartapp.NewService(cartpg.NewCartRepo(pool))

	// Checkout (adapters)
	cartReader := checkoutadapter.NewCartServiceReader(cartSvc)
	catalogReader := checkoutadapter.NewCatalogServiceReader(catalogSvc)
	checkoutSvc := checkoutapp.NewService(cartReader, catalogReader, 10)

	// Orders
	orderOpts := []orderapp.Option{orderapp.WithLogger(log)}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unavailable, order cache may miss", slog.Any("err", err))
		}
		orderOpts = append(orderOpts, orderapp.WithCache(ordercache.NewOrderCache(rdb, cfg.OrderCacheTTL)))
	}
	orderSvc := orderapp.NewService(orderpg.NewStore(pool), orderOpts...)

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	handler := newRouter(log, verifier, cfg.RequestTimeout, pool.Ping,
		catalogrest.NewHandler(catalogSvc),
		cartrest.NewHandler(cartSvc),
		checkoutrest.NewHandler(checkoutSvc),
		orderrest.NewHandler(orderSvc),
	)

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", grpcAddr, err)
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	reflection.Register(grpcServer)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", httpAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		log.Info("grpc starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("grpc serve error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")
	healthSrv.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}
	shutdown.Graceful(log, "grpc", 10*time.Second, grpcServer.GracefulStop, grpcServer.Stop)

	wg.Wait()
	return nil
}
