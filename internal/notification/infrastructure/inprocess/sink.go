// Package inprocess delivers events straight to the notification service,
// for deployments without Kafka (the memory store driver).
package inprocess

import (
	"context"

	"github.com/dmehra2102/storefront/internal/notification/application"
)

type Sink struct {
	svc *application.Service
}

func NewSink(svc *application.Service) *Sink {
	return &Sink{svc: svc}
}

func (s *Sink) Publish(ctx context.Context, aggregateType, aggregateID, eventType string, payload []byte) error {
	return s.svc.Handle(ctx, eventType, payload)
}
