package application

import (
	"context"

	"github.com/dmehra2102/storefront/internal/ticket/domain"
)

// TicketRepository is append-only: there is no update or delete.
type TicketRepository interface {
	// Create returns domain.ErrCodeCollision when the code is already taken.
	Create(ctx context.Context, t domain.Ticket) (domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (domain.Ticket, error)
	ListByCart(ctx context.Context, cartID string) ([]domain.Ticket, error)
	ListByPurchaser(ctx context.Context, purchaser string) ([]domain.Ticket, error)
}
