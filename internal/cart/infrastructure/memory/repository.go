package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmehra2102/storefront/internal/cart/domain"
)

type Repository struct {
	mu    sync.Mutex
	carts map[string]domain.Cart
}

func NewRepository() *Repository {
	return &Repository{carts: make(map[string]domain.Cart)}
}

func (r *Repository) Create(ctx context.Context, c domain.Cart) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[c.ID] = c.Clone()
	return c.Clone(), nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[id]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return c.Clone(), nil
}

func (r *Repository) AddItem(ctx context.Context, cartID, productID string) (domain.Cart, error) {
	return r.mutate(cartID, func(c *domain.Cart) error {
		c.Add(productID)
		return nil
	})
}

func (r *Repository) RemoveItem(ctx context.Context, cartID, productID string) (domain.Cart, error) {
	return r.mutate(cartID, func(c *domain.Cart) error {
		return c.Remove(productID)
	})
}

func (r *Repository) Settle(ctx context.Context, cartID string, purchased []domain.LineItem) (domain.Cart, error) {
	return r.mutate(cartID, func(c *domain.Cart) error {
		c.Settle(purchased)
		return nil
	})
}

func (r *Repository) mutate(cartID string, fn func(*domain.Cart) error) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cartID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	c := stored.Clone()
	if err := fn(&c); err != nil {
		return domain.Cart{}, err
	}
	c.UpdatedAt = time.Now().UTC()
	r.carts[cartID] = c
	return c.Clone(), nil
}
