package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cart "github.com/dmehra2102/storefront/internal/cart/domain"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
	"github.com/dmehra2102/storefront/internal/checkout/domain"
	ticket "github.com/dmehra2102/storefront/internal/ticket/domain"
)

type Service struct {
	log      *slog.Logger
	carts    CartStore
	stock    Inventory
	tickets  Tickets
	notifier Notifier
	observer Observer
	tracer   trace.Tracer
}

func NewService(log *slog.Logger, carts CartStore, stock Inventory, tickets Tickets, notifier Notifier, observer Observer) *Service {
	return &Service{
		log:      log,
		carts:    carts,
		stock:    stock,
		tickets:  tickets,
		notifier: notifier,
		observer: observer,
		tracer:   otel.Tracer("checkout"),
	}
}

// Checkout tries every cart line independently against stock. Fulfilled lines
// go on a ticket and leave the cart; unfulfilled lines stay for a later attempt.
// There is no rollback: if storage fails midway, decrements already applied
// remain and the error is returned. purchaser is the ID of an identity the
// caller has already resolved and authorized with identity.CanCheckout.
func (s *Service) Checkout(ctx context.Context, cartID, purchaser string) (domain.Result, error) {
	ctx, span := s.tracer.Start(ctx, "Checkout", trace.WithAttributes(
		attribute.String("cart_id", cartID),
		attribute.String("purchaser", purchaser),
	))
	defer span.End()

	res, err := s.checkout(ctx, cartID, purchaser)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Result{}, err
	}
	summary := res.Summary()
	span.SetAttributes(attribute.String("result", summary))
	s.observer.Attempt(summary)
	return res, nil
}

func (s *Service) checkout(ctx context.Context, cartID, purchaser string) (domain.Result, error) {
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return domain.Result{}, err
	}
	if c.Empty() {
		return domain.Result{Lines: []domain.LineOutcome{}}, nil
	}

	res := domain.Result{Lines: make([]domain.LineOutcome, 0, len(c.Items))}
	var (
		lines     []ticket.Line
		purchased []cart.LineItem
	)
	for _, item := range c.Items {
		outcome, line, err := s.attempt(ctx, item)
		if err != nil {
			s.log.Error("checkout aborted", "cart_id", cartID, "product_id", item.ProductID,
				"fulfilled_so_far", len(purchased), "err", err)
			return domain.Result{}, fmt.Errorf("checkout %s: %w", cartID, err)
		}
		res.Lines = append(res.Lines, outcome)
		s.observer.Line(string(outcome.Status), string(outcome.Reason))
		if outcome.Status == domain.Fulfilled {
			lines = append(lines, line)
			purchased = append(purchased, item)
		}
	}

	if len(lines) == 0 {
		s.log.Info("checkout fulfilled nothing", "cart_id", cartID, "lines", len(res.Lines))
		return res, nil
	}

	t, err := s.tickets.Create(ctx, cartID, purchaser, lines)
	if err != nil {
		return domain.Result{}, fmt.Errorf("checkout %s: create ticket: %w", cartID, err)
	}
	res.Ticket = &t

	if _, err := s.carts.Settle(ctx, cartID, purchased); err != nil {
		return domain.Result{}, fmt.Errorf("checkout %s: settle cart: %w", cartID, err)
	}

	if err := s.notifier.PurchaseConfirmed(ctx, t); err != nil {
		s.log.Warn("purchase confirmation not sent", "ticket_id", t.ID, "err", err)
	}

	s.log.Info("checkout completed", "cart_id", cartID, "ticket_id", t.ID,
		"fulfilled", len(lines), "unfulfilled", len(res.Lines)-len(lines), "amount", t.Amount.String())
	return res, nil
}

func (s *Service) attempt(ctx context.Context, item cart.LineItem) (domain.LineOutcome, ticket.Line, error) {
	ctx, span := s.tracer.Start(ctx, "TryDecrementStock", trace.WithAttributes(
		attribute.String("product_id", item.ProductID),
		attribute.Int("quantity", item.Quantity),
	))
	defer span.End()

	out := domain.LineOutcome{ProductID: item.ProductID, Quantity: item.Quantity, Status: domain.Unfulfilled}
	p, ok, err := s.stock.TryDecrementStock(ctx, item.ProductID, item.Quantity)
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		out.Reason = domain.ReasonProductMissing
	case err != nil:
		span.RecordError(err)
		return out, ticket.Line{}, err
	case !ok:
		out.Reason = domain.ReasonInsufficientStock
	default:
		out.Status = domain.Fulfilled
		span.SetAttributes(attribute.Bool("fulfilled", true))
		return out, ticket.Line{
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
		}, nil
	}
	span.SetAttributes(attribute.String("reason", string(out.Reason)))
	return out, ticket.Line{}, nil
}
