package application

import (
	"context"

	"github.com/dmehra2102/storefront/internal/catalog/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	// List returns products in creation order plus the total count.
	List(ctx context.Context, offset, limit int) ([]domain.Product, int, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error)
	Delete(ctx context.Context, id string) (domain.Product, error)
	// TryDecrementStock is an atomic compare-and-decrement: stock is reduced by qty
	// only when stock >= qty. The returned product is the post-decrement state.
	TryDecrementStock(ctx context.Context, id string, qty int) (domain.Product, bool, error)
}

type Notifier interface {
	ProductRemoved(ctx context.Context, p domain.Product) error
}
