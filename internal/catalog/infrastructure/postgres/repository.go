package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/storefront/internal/catalog/domain"
	"github.com/dmehra2102/storefront/pkg/storage"
)

const codeConstraint = "products_code_key"

const productColumns = `id, title, description, price::text, code, stock, owner, created_at, updated_at`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO products (id, title, description, price, code, stock, owner, created_at, updated_at)
		VALUES ($1,$2,$3,$4::numeric,$5,$6,$7,$8,$9)
		RETURNING `+productColumns,
		p.ID, p.Title, p.Description, p.Price.String(), p.Code, p.Stock, p.Owner, p.CreatedAt, p.UpdatedAt)
	created, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, r.mapErr(err)
	}
	return created, nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		return domain.Product{}, r.mapErr(err)
	}
	return p, nil
}

func (r *Repository) List(ctx context.Context, offset, limit int) ([]domain.Product, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, r.mapErr(err)
	}

	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY seq LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, r.mapErr(err)
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, r.mapErr(err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.mapErr(err)
	}
	return out, total, nil
}

func (r *Repository) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	var price *string
	if patch.Price != nil {
		s := patch.Price.String()
		price = &s
	}
	row := r.pool.QueryRow(ctx, `UPDATE products SET
			title       = COALESCE($2::text, title),
			description = COALESCE($3::text, description),
			price       = COALESCE($4::numeric, price),
			code        = COALESCE($5::text, code),
			stock       = COALESCE($6::int, stock),
			updated_at  = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id, patch.Title, patch.Description, price, patch.Code, patch.Stock)
	p, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, r.mapErr(err)
	}
	return p, nil
}

func (r *Repository) Delete(ctx context.Context, id string) (domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `DELETE FROM products WHERE id=$1 RETURNING `+productColumns, id))
	if err != nil {
		return domain.Product{}, r.mapErr(err)
	}
	return p, nil
}

// TryDecrementStock is a single conditional UPDATE, so concurrent callers racing
// for the last units are serialized by the row lock and never oversell.
func (r *Repository) TryDecrementStock(ctx context.Context, id string, qty int) (domain.Product, bool, error) {
	row := r.pool.QueryRow(ctx, `UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
		RETURNING `+productColumns, id, qty)
	p, err := scanProduct(row)
	if err == nil {
		return p, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, false, r.mapErr(err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, id).Scan(&exists); err != nil {
		return domain.Product{}, false, r.mapErr(err)
	}
	if !exists {
		return domain.Product{}, false, domain.ErrProductNotFound
	}
	return domain.Product{}, false, nil
}

func (r *Repository) mapErr(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrProductNotFound
	case storage.IsUniqueViolation(err, codeConstraint):
		return domain.ErrDuplicateCode
	case storage.IsDataException(err):
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	err = storage.Classify(err)
	if errors.Is(err, storage.ErrUnavailable) {
		r.log.Error("catalog store unavailable", "err", err)
	}
	return err
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var price string
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &price, &p.Code, &p.Stock, &p.Owner, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %s price %q: %w", p.ID, price, err)
	}
	p.Price = d
	return p, nil
}
