package application

import (
	"context"

	cart "github.com/dmehra2102/storefront/internal/cart/domain"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
	ticket "github.com/dmehra2102/storefront/internal/ticket/domain"
)

type CartStore interface {
	Get(ctx context.Context, id string) (cart.Cart, error)
	Settle(ctx context.Context, cartID string, purchased []cart.LineItem) (cart.Cart, error)
}

// Inventory performs the per-line atomic compare-and-decrement. It returns the
// product as it stands after the decrement, or false when stock is short.
type Inventory interface {
	TryDecrementStock(ctx context.Context, productID string, qty int) (catalog.Product, bool, error)
}

type Tickets interface {
	Create(ctx context.Context, cartID, purchaser string, lines []ticket.Line) (ticket.Ticket, error)
}

type Notifier interface {
	PurchaseConfirmed(ctx context.Context, t ticket.Ticket) error
}

type Observer interface {
	Attempt(result string)
	Line(status, reason string)
}
