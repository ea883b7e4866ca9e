package application

import (
	"context"

	"github.com/dmehra2102/storefront/internal/cart/domain"
	catalog "github.com/dmehra2102/storefront/internal/catalog/domain"
)

type CartRepository interface {
	Create(ctx context.Context, c domain.Cart) (domain.Cart, error)
	Get(ctx context.Context, id string) (domain.Cart, error)
	// AddItem increments the product's line or appends it with quantity 1.
	AddItem(ctx context.Context, cartID, productID string) (domain.Cart, error)
	RemoveItem(ctx context.Context, cartID, productID string) (domain.Cart, error)
	// Settle subtracts purchased quantities and drops lines that reach zero.
	Settle(ctx context.Context, cartID string, purchased []domain.LineItem) (domain.Cart, error)
}

type ProductLookup interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}
