package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jcmexdev/broaster-orders/internal/core/ports"
	"github.com/jcmexdev/broaster-orders/internal/core/service"
	"github.com/jcmexdev/broaster-orders/internal/infra/adapters/postgres"
	"github.com/jcmexdev/broaster-orders/internal/infra/adapters/rabbitmq"
	"github.com/jcmexdev/broaster-orders/internal/infra/adapters/sqlite"
	"github.com/jcmexdev/broaster-orders/internal/infra/httpx"
	"github.com/jcmexdev/broaster-orders/internal/pkg/cache"
	"github.com/jcmexdev/broaster-orders/internal/pkg/config"
	"github.com/jcmexdev/broaster-orders/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("order-api")
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	repo, closeRepo, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open order store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	var idempotency cache.Cache
	if cfg.RedisAddr != "" {
		idempotency = cache.NewRedisCache(cfg.RedisAddr, "orders")
	} else {
		idempotency = cache.NewMemoryCache("orders", cfg.IdempotencyCacheSize, cfg.IdempotencyTTL)
	}

	var events ports.EventPublisher = ports.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		pool, err := rabbitmq.NewChannelPool(cfg.RabbitMQURL, cfg.RabbitMQQueue, cfg.ChannelPoolSize)
		if err != nil {
			slog.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		events = rabbitmq.NewPublisher(pool, cfg.RabbitMQQueue)
	}

	orders := service.NewOrderService(repo,
		service.WithIdempotencyCache(idempotency, cfg.IdempotencyTTL),
		service.WithEventPublisher(events),
		service.WithTransitionEnforcement(cfg.EnforceStatusTransitions),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpx.NewRouter(httpx.NewHandler(orders)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}
	}()

	slog.Info("order api running",
		"addr", srv.Addr,
		"store", cfg.StoreDriver,
		"redis", cfg.RedisAddr != "",
		"events", cfg.RabbitMQURL != "",
		"enforce_transitions", cfg.EnforceStatusTransitions,
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.Config) (ports.OrderRepository, func(), error) {
	if cfg.StoreDriver == config.DriverPostgres {
		repo, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, nil, err
	}
	repo, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return repo, func() {
		if err := repo.Close(); err != nil {
			slog.Error("sqlite close error", "error", err)
		}
	}, nil
}
