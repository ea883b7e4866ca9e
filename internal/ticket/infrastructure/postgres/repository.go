package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/storefront/internal/ticket/domain"
	"github.com/dmehra2102/storefront/pkg/storage"
)

const codeConstraint = "tickets_code_key"

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, t domain.Ticket) (domain.Ticket, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Ticket{}, r.mapErr(err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO tickets (id, code, cart_id, purchaser, amount, purchase_date)
		VALUES ($1,$2,$3,$4,$5::numeric,$6)`,
		t.ID, t.Code, t.CartID, t.Purchaser, t.Amount.String(), t.PurchaseDate)
	if err != nil {
		return domain.Ticket{}, r.mapErr(err)
	}

	batch := &pgx.Batch{}
	for i, l := range t.Lines {
		batch.Queue(`INSERT INTO ticket_lines (ticket_id, position, product_id, title, quantity, unit_price)
			VALUES ($1,$2,$3,$4,$5,$6::numeric)`,
			t.ID, i, l.ProductID, l.Title, l.Quantity, l.UnitPrice.String())
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return domain.Ticket{}, r.mapErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Ticket{}, r.mapErr(err)
	}
	return t, nil
}

func (r *Repository) GetByCode(ctx context.Context, code string) (domain.Ticket, error) {
	tickets, err := r.query(ctx, `WHERE code=$1`, code)
	if err != nil {
		return domain.Ticket{}, err
	}
	if len(tickets) == 0 {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return tickets[0], nil
}

func (r *Repository) ListByCart(ctx context.Context, cartID string) ([]domain.Ticket, error) {
	return r.query(ctx, `WHERE cart_id=$1`, cartID)
}

func (r *Repository) ListByPurchaser(ctx context.Context, purchaser string) ([]domain.Ticket, error) {
	return r.query(ctx, `WHERE purchaser=$1`, purchaser)
}

func (r *Repository) query(ctx context.Context, where string, arg any) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, cart_id, purchaser, amount::text, purchase_date
		FROM tickets `+where+` ORDER BY purchase_date, id`, arg)
	if err != nil {
		return nil, r.mapErr(err)
	}
	defer rows.Close()

	out := []domain.Ticket{}
	index := map[string]int{}
	ids := []string{}
	for rows.Next() {
		var t domain.Ticket
		var amount string
		if err := rows.Scan(&t.ID, &t.Code, &t.CartID, &t.Purchaser, &amount, &t.PurchaseDate); err != nil {
			return nil, r.mapErr(err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("ticket %s amount %q: %w", t.ID, amount, err)
		}
		t.Lines = []domain.Line{}
		index[t.ID] = len(out)
		ids = append(ids, t.ID)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapErr(err)
	}
	if len(ids) == 0 {
		return out, nil
	}

	lines, err := r.pool.Query(ctx, `SELECT ticket_id, product_id, title, quantity, unit_price::text
		FROM ticket_lines WHERE ticket_id = ANY($1) ORDER BY ticket_id, position`, ids)
	if err != nil {
		return nil, r.mapErr(err)
	}
	defer lines.Close()
	for lines.Next() {
		var ticketID, price string
		var l domain.Line
		if err := lines.Scan(&ticketID, &l.ProductID, &l.Title, &l.Quantity, &price); err != nil {
			return nil, r.mapErr(err)
		}
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("ticket %s line price %q: %w", ticketID, price, err)
		}
		i := index[ticketID]
		out[i].Lines = append(out[i].Lines, l)
	}
	if err := lines.Err(); err != nil {
		return nil, r.mapErr(err)
	}
	return out, nil
}

func (r *Repository) mapErr(err error) error {
	if storage.IsUniqueViolation(err, codeConstraint) {
		return domain.ErrCodeCollision
	}
	err = storage.Classify(err)
	if errors.Is(err, storage.ErrUnavailable) {
		r.log.Error("ticket store unavailable", "err", err)
	}
	return err
}
