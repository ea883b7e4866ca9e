package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dmehra2102/storefront/internal/catalog/domain"
)

type Service struct {
	log          *slog.Logger
	repo         ProductRepository
	notifier     Notifier
	defaultLimit int
	now          func() time.Time
}

func NewService(log *slog.Logger, repo ProductRepository, notifier Notifier, defaultLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &Service{
		log:          log,
		repo:         repo,
		notifier:     notifier,
		defaultLimit: defaultLimit,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, in domain.NewProduct) (domain.Product, error) {
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}
	now := s.now()
	p, err := s.repo.Create(ctx, domain.Product{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Code:        in.Code,
		Stock:       in.Stock,
		Owner:       in.Owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product created", "product_id", p.ID, "code", p.Code, "owner", p.Owner)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.repo.Get(ctx, id)
}

// List pages through the catalog in creation order. page is 1-based; a page
// past the end yields no items but the correct TotalPages. limit is capped at
// domain.MaxPageLimit.
func (s *Service) List(ctx context.Context, page, limit int) (domain.Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultLimit
	}
	limit = min(limit, domain.MaxPageLimit)
	offset := math.MaxInt
	if page-1 <= math.MaxInt/limit {
		offset = (page - 1) * limit
	}
	items, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return domain.Page{}, err
	}
	if items == nil {
		items = []domain.Product{}
	}
	return domain.Page{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: domain.TotalPages(total, limit),
	}, nil
}

func (s *Service) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	if err := patch.Validate(); err != nil {
		return domain.Product{}, err
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete removes the product and notifies its owner. Authorization is the
// caller's job.
func (s *Service) Delete(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	s.log.Info("product deleted", "product_id", p.ID, "owner", p.Owner)
	if err := s.notifier.ProductRemoved(ctx, p); err != nil {
		s.log.Error("product removal notice failed", "product_id", p.ID, "err", err)
	}
	return p, nil
}

func (s *Service) TryDecrementStock(ctx context.Context, id string, qty int) (domain.Product, bool, error) {
	if qty < 1 {
		return domain.Product{}, false, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}
	return s.repo.TryDecrementStock(ctx, id, qty)
}
