package application

import (
	"context"
	"encoding/json"
	"time"

	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
	"github.com/dmehra2102/storefront/internal/notification/domain"
	ticket "github.com/dmehra2102/storefront/internal/ticket/domain"
)

// Publisher encodes core events and hands them to a Sink. It satisfies the
// notifier ports of the catalog and checkout services.
type Publisher struct {
	sink Sink
	now  func() time.Time
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink, now: func() time.Time { return time.Now().UTC() }}
}

func (p *Publisher) PurchaseConfirmed(ctx context.Context, t ticket.Ticket) error {
	ev := domain.PurchaseConfirmed{
		TicketID:     t.ID,
		Code:         t.Code,
		CartID:       t.CartID,
		Purchaser:    t.Purchaser,
		Amount:       t.Amount,
		PurchaseDate: t.PurchaseDate,
		Lines:        make([]domain.PurchasedLine, 0, len(t.Lines)),
	}
	for _, l := range t.Lines {
		ev.Lines = append(ev.Lines, domain.PurchasedLine{
			ProductID: l.ProductID,
			Title:     l.Title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return p.publish(ctx, "ticket", t.ID, domain.TypePurchaseConfirmed, ev)
}

func (p *Publisher) ProductRemoved(ctx context.Context, prod catalog.Product) error {
	return p.publish(ctx, "product", prod.ID, domain.TypeProductRemoved, domain.ProductRemoved{
		ProductID: prod.ID,
		Title:     prod.Title,
		Code:      prod.Code,
		Owner:     prod.Owner,
		RemovedAt: p.now(),
	})
}

func (p *Publisher) publish(ctx context.Context, aggregateType, aggregateID, eventType string, ev any) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.sink.Publish(ctx, aggregateType, aggregateID, eventType, payload)
}
