package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/storefront/internal/cart/domain"
	"github.com/dmehra2102/storefront/pkg/storage"
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, c domain.Cart) (domain.Cart, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO carts (id, created_at, updated_at) VALUES ($1,$2,$3)`, c.ID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return domain.Cart{}, r.mapErr(err)
	}
	return c, nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Cart, error) {
	c, err := load(ctx, r.pool, id)
	if err != nil {
		return domain.Cart{}, r.mapErr(err)
	}
	return c, nil
}

func (r *Repository) AddItem(ctx context.Context, cartID, productID string) (domain.Cart, error) {
	return r.inTx(ctx, cartID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO cart_items (cart_id, product_id, quantity)
			VALUES ($1, $2, 1)
			ON CONFLICT (cart_id, product_id)
			DO UPDATE SET quantity = cart_items.quantity + 1`, cartID, productID)
		return err
	})
}

func (r *Repository) RemoveItem(ctx context.Context, cartID, productID string) (domain.Cart, error) {
	return r.inTx(ctx, cartID, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1 AND product_id=$2`, cartID, productID)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return domain.ErrNotInCart
		}
		return nil
	})
}

func (r *Repository) Settle(ctx context.Context, cartID string, purchased []domain.LineItem) (domain.Cart, error) {
	return r.inTx(ctx, cartID, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, it := range purchased {
			batch.Queue(`DELETE FROM cart_items WHERE cart_id=$1 AND product_id=$2 AND quantity <= $3`,
				cartID, it.ProductID, it.Quantity)
			batch.Queue(`UPDATE cart_items SET quantity = quantity - $3 WHERE cart_id=$1 AND product_id=$2 AND quantity > $3`,
				cartID, it.ProductID, it.Quantity)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// inTx locks the cart row, applies fn and returns the resulting cart.
func (r *Repository) inTx(ctx context.Context, cartID string, fn func(pgx.Tx) error) (domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Cart{}, r.mapErr(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id=$1`, cartID)
	if err != nil {
		return domain.Cart{}, r.mapErr(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	if err := fn(tx); err != nil {
		return domain.Cart{}, r.mapErr(err)
	}
	c, err := load(ctx, tx, cartID)
	if err != nil {
		return domain.Cart{}, r.mapErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Cart{}, r.mapErr(err)
	}
	return c, nil
}

func load(ctx context.Context, q querier, id string) (domain.Cart, error) {
	var c domain.Cart
	err := q.QueryRow(ctx, `SELECT id, created_at, updated_at FROM carts WHERE id=$1`, id).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Cart{}, err
	}

	rows, err := q.Query(ctx, `SELECT product_id, quantity FROM cart_items WHERE cart_id=$1 ORDER BY id`, id)
	if err != nil {
		return domain.Cart{}, err
	}
	defer rows.Close()

	c.Items = []domain.LineItem{}
	for rows.Next() {
		var it domain.LineItem
		if err := rows.Scan(&it.ProductID, &it.Quantity); err != nil {
			return domain.Cart{}, err
		}
		c.Items = append(c.Items, it)
	}
	return c, rows.Err()
}

func (r *Repository) mapErr(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, domain.ErrNotInCart), errors.Is(err, domain.ErrCartNotFound):
		return err
	case errors.Is(err, pgx.ErrNoRows):
		return domain.ErrCartNotFound
	case errors.As(err, &pgErr) && pgErr.Code == "23503":
		return domain.ErrCartNotFound
	}
	err = storage.Classify(err)
	if errors.Is(err, storage.ErrUnavailable) {
		r.log.Error("cart store unavailable", "err", err)
	}
	return err
}
