package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/storefront/pkg/outbox"
	"github.com/dmehra2102/storefront/pkg/tracing"
)

// OutboxSink writes events to the outbox table; the relay ships them to Kafka.
type OutboxSink struct {
	log     *slog.Logger
	pool    *pgxpool.Pool
	headers map[string]string
}

func NewOutboxSink(log *slog.Logger, pool *pgxpool.Pool, source string) *OutboxSink {
	return &OutboxSink{log: log, pool: pool, headers: map[string]string{"source": source}}
}

func (s *OutboxSink) Publish(ctx context.Context, aggregateType, aggregateID, eventType string, payload []byte) error {
	err := outbox.Insert(ctx, s.pool, outbox.Event{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Type:          eventType,
		Payload:       payload,
		Headers:       s.headers,
		Traceparent:   tracing.Traceparent(ctx),
	})
	if err != nil {
		return err
	}
	s.log.Debug("outbox event stored", "type", eventType, "aggregate_id", aggregateID)
	return nil
}
