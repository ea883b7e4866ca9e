package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/storefront/internal/cart/domain"
)

type Service struct {
	log      *slog.Logger
	repo     CartRepository
	products ProductLookup
}

func NewService(log *slog.Logger, repo CartRepository, products ProductLookup) *Service {
	return &Service{log: log, repo: repo, products: products}
}

func (s *Service) Create(ctx context.Context) (domain.Cart, error) {
	c, err := s.repo.Create(ctx, domain.New(uuid.NewString(), time.Now().UTC()))
	if err != nil {
		return domain.Cart{}, err
	}
	s.log.Debug("cart created", "cart_id", c.ID)
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Cart, error) {
	return s.repo.Get(ctx, id)
}

// AddItem adds one unit of the product. It returns a nil cart, and changes
// nothing, when the product is currently out of stock. Stock is not reserved.
func (s *Service) AddItem(ctx context.Context, cartID, productID string) (*domain.Cart, error) {
	if _, err := s.repo.Get(ctx, cartID); err != nil {
		return nil, err
	}
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Stock == 0 {
		s.log.Info("add to cart refused, no stock", "cart_id", cartID, "product_id", productID)
		return nil, nil
	}
	c, err := s.repo.AddItem(ctx, cartID, productID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) RemoveItem(ctx context.Context, cartID, productID string) (domain.Cart, error) {
	return s.repo.RemoveItem(ctx, cartID, productID)
}

func (s *Service) Settle(ctx context.Context, cartID string, purchased []domain.LineItem) (domain.Cart, error) {
	return s.repo.Settle(ctx, cartID, purchased)
}
