package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypePurchaseConfirmed = "PurchaseConfirmed"
	TypeProductRemoved    = "ProductRemoved"
)

type PurchasedLine struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type PurchaseConfirmed struct {
	TicketID     string          `json:"ticket_id"`
	Code         string          `json:"code"`
	CartID       string          `json:"cart_id"`
	Purchaser    string          `json:"purchaser"`
	Amount       decimal.Decimal `json:"amount"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Lines        []PurchasedLine `json:"lines"`
}

type ProductRemoved struct {
	ProductID string    `json:"product_id"`
	Title     string    `json:"title"`
	Code      string    `json:"code"`
	Owner     string    `json:"owner"`
	RemovedAt time.Time `json:"removed_at"`
}

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}
