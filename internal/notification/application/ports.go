package application

import (
	"context"

	"github.com/dmehra2102/storefront/internal/notification/domain"
)

// Mailer delivers a composed message. Delivery itself lives outside the core.
type Mailer interface {
	Send(ctx context.Context, msg domain.Message) error
}

// Sink carries an encoded event towards the notifier, e.g. through the outbox.
type Sink interface {
	Publish(ctx context.Context, aggregateType, aggregateID, eventType string, payload []byte) error
}
