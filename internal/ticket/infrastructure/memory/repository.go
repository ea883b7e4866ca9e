package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/dmehra2102/storefront/internal/ticket/domain"
)

type Repository struct {
	mu      sync.RWMutex
	tickets []domain.Ticket
	byCode  map[string]int
}

func NewRepository() *Repository {
	return &Repository{byCode: make(map[string]int)}
}

func (r *Repository) Create(ctx context.Context, t domain.Ticket) (domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byCode[t.Code]; taken {
		return domain.Ticket{}, domain.ErrCodeCollision
	}
	t.Lines = slices.Clone(t.Lines)
	r.byCode[t.Code] = len(r.tickets)
	r.tickets = append(r.tickets, t)
	return t, nil
}

func (r *Repository) GetByCode(ctx context.Context, code string) (domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byCode[code]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return r.tickets[i], nil
}

func (r *Repository) ListByCart(ctx context.Context, cartID string) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool { return t.CartID == cartID }), nil
}

func (r *Repository) ListByPurchaser(ctx context.Context, purchaser string) ([]domain.Ticket, error) {
	return r.filter(func(t domain.Ticket) bool { return t.Purchaser == purchaser }), nil
}

func (r *Repository) filter(keep func(domain.Ticket) bool) []domain.Ticket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []domain.Ticket{}
	for _, t := range r.tickets {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
