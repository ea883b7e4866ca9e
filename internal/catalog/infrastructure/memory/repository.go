// Package memory is an in-process product store. A single mutex serializes all
// access, which makes TryDecrementStock linearizable per product.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmehra2102/storefront/internal/catalog/domain"
)

type Repository struct {
	mu       sync.Mutex
	products map[string]domain.Product
	order    []string
	codes    map[string]string
}

func NewRepository() *Repository {
	return &Repository{
		products: make(map[string]domain.Product),
		codes:    make(map[string]string),
	}
}

func (r *Repository) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.codes[p.Code]; taken {
		return domain.Product{}, domain.ErrDuplicateCode
	}
	r.products[p.ID] = p
	r.codes[p.Code] = p.ID
	r.order = append(r.order, p.ID)
	return p, nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *Repository) List(ctx context.Context, offset, limit int) ([]domain.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := len(r.order)
	if offset >= total {
		return []domain.Product{}, total, nil
	}
	end := total
	if limit < total-offset {
		end = offset + limit
	}
	out := make([]domain.Product, 0, end-offset)
	for _, id := range r.order[offset:end] {
		out = append(out, r.products[id])
	}
	return out, total, nil
}

func (r *Repository) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if patch.Code != nil && *patch.Code != p.Code {
		if _, taken := r.codes[*patch.Code]; taken {
			return domain.Product{}, domain.ErrDuplicateCode
		}
		delete(r.codes, p.Code)
		r.codes[*patch.Code] = id
	}
	p = patch.Apply(p)
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = p
	return p, nil
}

func (r *Repository) Delete(ctx context.Context, id string) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	delete(r.products, id)
	delete(r.codes, p.Code)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, nil
}

func (r *Repository) TryDecrementStock(ctx context.Context, id string, qty int) (domain.Product, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, false, domain.ErrProductNotFound
	}
	if p.Stock < qty {
		return domain.Product{}, false, nil
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now().UTC()
	r.products[id] = p
	return p, true, nil
}
