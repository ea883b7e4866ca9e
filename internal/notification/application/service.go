package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmehra2102/storefront/internal/notification/domain"
)

// Service turns storefront events into mail.
type Service struct {
	log    *slog.Logger
	mailer Mailer
	from   string
}

func NewService(log *slog.Logger, mailer Mailer, from string) *Service {
	return &Service{log: log, mailer: mailer, from: from}
}

// Handle decodes and delivers one event. Unknown types are skipped.
func (s *Service) Handle(ctx context.Context, eventType string, payload []byte) error {
	var msg domain.Message
	switch eventType {
	case domain.TypePurchaseConfirmed:
		var ev domain.PurchaseConfirmed
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		msg = purchaseConfirmation(ev)
	case domain.TypeProductRemoved:
		var ev domain.ProductRemoved
		if err := json.Unmarshal(payload, &ev); err != nil {
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		if ev.Owner == "" {
			return nil
		}
		msg = productRemoved(ev)
	default:
		s.log.Debug("notification skipped", "type", eventType)
		return nil
	}
	msg.From = s.from
	return s.mailer.Send(ctx, msg)
}

func purchaseConfirmation(ev domain.PurchaseConfirmed) domain.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your purchase. Ticket %s, total %s.\n\n", ev.Code, ev.Amount.StringFixed(2))
	for _, l := range ev.Lines {
		fmt.Fprintf(&b, "- %s x%d @ %s\n", l.Title, l.Quantity, l.UnitPrice.StringFixed(2))
	}
	return domain.Message{
		To:      ev.Purchaser,
		Subject: "Purchase confirmation " + ev.Code,
		Body:    b.String(),
	}
}

func productRemoved(ev domain.ProductRemoved) domain.Message {
	return domain.Message{
		To:      ev.Owner,
		Subject: "Product removed",
		Body:    fmt.Sprintf("Your product %s (%s) has been removed from the catalog.\n", ev.Title, ev.Code),
	}
}
