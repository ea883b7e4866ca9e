package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	cartmem "github.com/dmehra2102/storefront/internal/cart/infrastructure/memory"
	cartpg "github.com/dmehra2102/storefront/internal/cart/infrastructure/postgres"
	catalogmem "github.com/dmehra2102/storefront/internal/catalog/infrastructure/memory"
	catalogpg "github.com/dmehra2102/storefront/internal/catalog/infrastructure/postgres"
	checkouthttp "github.com/dmehra2102/storefront/internal/checkout/infrastructure/http"
	"github.com/dmehra2102/storefront/internal/config"
	notificationapp "github.com/dmehra2102/storefront/internal/notification/application"
	"github.com/dmehra2102/storefront/internal/notification/infrastructure/inprocess"
	notificationkafka "github.com/dmehra2102/storefront/internal/notification/infrastructure/kafka"
	"github.com/dmehra2102/storefront/internal/notification/infrastructure/mail"
	notificationpg "github.com/dmehra2102/storefront/internal/notification/infrastructure/postgres"
	"github.com/dmehra2102/storefront/internal/platform/postgres"
	"github.com/dmehra2102/storefront/internal/server"
	ticketmem "github.com/dmehra2102/storefront/internal/ticket/infrastructure/memory"
	ticketpg "github.com/dmehra2102/storefront/internal/ticket/infrastructure/postgres"
	"github.com/dmehra2102/storefront/pkg/health"
	"github.com/dmehra2102/storefront/pkg/idempotency"
	"github.com/dmehra2102/storefront/pkg/logging"
	"github.com/dmehra2102/storefront/pkg/metrics"
	"github.com/dmehra2102/storefront/pkg/outbox"
	"github.com/dmehra2102/storefront/pkg/shutdown"
	"github.com/dmehra2102/storefront/pkg/tracing"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	tp, err := tracing.Init(ctx, "storefront", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		stores server.Stores
		sink   notificationapp.Sink
		ready  health.Probe = func(context.Context) error { return nil }
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		stores = server.Stores{
			Products: catalogmem.NewRepository(),
			Carts:    cartmem.NewRepository(),
			Tickets:  ticketmem.NewRepository(),
		}
		notifier := notificationapp.NewService(log, mail.NewLogMailer(log), cfg.MailFrom)
		sink = inprocess.NewSink(notifier)
		log.Info("using in-memory store")
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, log, cfg.PGURL)
		if err != nil {
			log.Error("pg connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, log, pool); err != nil {
			log.Error("migration failed", "err", err)
			os.Exit(1)
		}
		stores = server.Stores{
			Products: catalogpg.NewRepository(log, pool),
			Carts:    cartpg.NewRepository(log, pool),
			Tickets:  ticketpg.NewRepository(log, pool),
		}
		sink = notificationpg.NewOutboxSink(log, pool, "storefront")
		ready = pool.Ping

		startRelay(ctx, log, pool, cfg)
	default:
		log.Error("unknown store driver", "driver", cfg.StoreDriver)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	var replay func(http.Handler) http.Handler
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unavailable, checkout idempotency disabled", "addr", cfg.RedisAddr, "err", err)
	} else {
		replay = idempotency.NewStore(rdb, cfg.IdempotencyTTL).Middleware(log, checkouthttp.ReplayScope)
	}

	app := server.NewApp(server.Deps{
		Log:              log,
		Stores:           stores,
		Sink:             sink,
		Observer:         metrics.NewCheckoutMetrics(reg),
		DefaultPageLimit: cfg.DefaultPageLimit,
		Replay:           replay,
	})
	router := server.NewRouter(server.Options{
		Log:      log,
		Metrics:  metrics.NewServerMetrics(reg, "api"),
		Gatherer: reg,
		Ready:    ready,
	}, app.Handlers...)

	hs := health.NewServer(log, "storefront", ready)
	go hs.Watch(ctx)
	gs, err := health.Run(cfg.GRPCAddr, hs)
	if err != nil {
		log.Error("grpc listen failed", "addr", cfg.GRPCAddr, "err", err)
		os.Exit(1)
	}
	log.Info("grpc health listening", "addr", cfg.GRPCAddr)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := shutdown.Timeout(10 * time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	gs.GracefulStop()
	log.Info("storefront shutdown complete")
}

// startRelay ships outbox rows to Kafka until ctx ends.
func startRelay(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) {
	writer := notificationkafka.NewWriter(cfg.KafkaBrokers)
	dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
	relay := outbox.NewRelay(log, outbox.NewPostgresStore(log, pool), dispatch, "storefront-relay")

	go func() {
		defer writer.Close()
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()
}
