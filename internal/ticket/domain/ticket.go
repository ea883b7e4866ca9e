package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line is a fulfilled cart line at the price in effect when stock was taken.
type Line struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Ticket is an immutable purchase receipt.
type Ticket struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	CartID       string          `json:"cart_id"`
	Purchaser    string          `json:"purchaser"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Amount       decimal.Decimal `json:"amount"`
	Lines        []Line          `json:"lines"`
}

func NewTicket(id, code, cartID, purchaser string, lines []Line, at time.Time) Ticket {
	return Ticket{
		ID:           id,
		Code:         code,
		CartID:       cartID,
		Purchaser:    purchaser,
		PurchaseDate: at,
		Amount:       Amount(lines),
		Lines:        lines,
	}
}

// Amount is the sum of price x quantity over lines.
func Amount(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
