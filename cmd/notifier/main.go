package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/storefront/internal/config"
	"github.com/dmehra2102/storefront/internal/notification/application"
	notificationkafka "github.com/dmehra2102/storefront/internal/notification/infrastructure/kafka"
	"github.com/dmehra2102/storefront/internal/notification/infrastructure/mail"
	"github.com/dmehra2102/storefront/pkg/health"
	"github.com/dmehra2102/storefront/pkg/idempotency"
	"github.com/dmehra2102/storefront/pkg/logging"
	"github.com/dmehra2102/storefront/pkg/shutdown"
	"github.com/dmehra2102/storefront/pkg/tracing"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	tp, err := tracing.Init(ctx, "notifier", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	redisDB := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisDB.Close()
	idem := idempotency.NewStore(redisDB, cfg.IdempotencyTTL)

	hs := health.NewServer(log, "notifier", func(ctx context.Context) error {
		return redisDB.Ping(ctx).Err()
	})
	go hs.Watch(ctx)
	gs, err := health.Run(cfg.GRPCAddr, hs)
	if err != nil {
		log.Error("grpc listen failed", "addr", cfg.GRPCAddr, "err", err)
		os.Exit(1)
	}

	svc := application.NewService(log, mail.NewLogMailer(log), cfg.MailFrom)
	consumer := notificationkafka.NewConsumer(log, cfg.KafkaBrokers, cfg.OutboxTopic, cfg.ConsumerGroup, svc, idem)

	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("consumer stopped", "err", err)
			cancel()
		}
	}()
	log.Info("notifier consuming", "topic", cfg.OutboxTopic, "group", cfg.ConsumerGroup)

	<-ctx.Done()

	stopCtx, stopCancel := shutdown.Timeout(5 * time.Second)
	defer stopCancel()
	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-stopCtx.Done():
		gs.Stop()
	}
	log.Info("notifier shutdown complete")
}
