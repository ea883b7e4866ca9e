package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MaxPageLimit caps the page size a caller may ask for.
	MaxPageLimit = 100
	// MaxStock matches the products.stock INTEGER column.
	MaxStock = math.MaxInt32
	// PriceScale is the number of decimal places a price may carry.
	PriceScale = 2
)

// MaxPrice is the largest value products.price NUMERIC(12,2) holds.
var MaxPrice = decimal.RequireFromString("9999999999.99")

type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Code        string          `json:"code"`
	Stock       int             `json:"stock"`
	Owner       string          `json:"owner"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type NewProduct struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Code        string          `json:"code"`
	Stock       int             `json:"stock"`
	Owner       string          `json:"owner"`
}

func (n NewProduct) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(n.Code) == "" {
		return fmt.Errorf("%w: code is required", ErrInvalidInput)
	}
	if err := validatePrice(n.Price); err != nil {
		return err
	}
	return validateStock(n.Stock)
}

func validatePrice(price decimal.Decimal) error {
	switch {
	case price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	case !price.Equal(price.Truncate(PriceScale)):
		return fmt.Errorf("%w: price must have at most %d decimal places", ErrInvalidInput, PriceScale)
	case price.GreaterThan(MaxPrice):
		return fmt.Errorf("%w: price must not exceed %s", ErrInvalidInput, MaxPrice)
	}
	return nil
}

func validateStock(stock int) error {
	switch {
	case stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	case stock > MaxStock:
		return fmt.Errorf("%w: stock must not exceed %d", ErrInvalidInput, MaxStock)
	}
	return nil
}

// ProductPatch carries the fields of a partial update; nil means "keep".
type ProductPatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Code        *string          `json:"code,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
}

func (p ProductPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}
	if p.Code != nil && strings.TrimSpace(*p.Code) == "" {
		return fmt.Errorf("%w: code must not be empty", ErrInvalidInput)
	}
	if p.Price != nil {
		if err := validatePrice(*p.Price); err != nil {
			return err
		}
	}
	if p.Stock != nil {
		return validateStock(*p.Stock)
	}
	return nil
}

// Apply merges the supplied fields into prod.
func (p ProductPatch) Apply(prod Product) Product {
	if p.Title != nil {
		prod.Title = *p.Title
	}
	if p.Description != nil {
		prod.Description = *p.Description
	}
	if p.Price != nil {
		prod.Price = *p.Price
	}
	if p.Code != nil {
		prod.Code = *p.Code
	}
	if p.Stock != nil {
		prod.Stock = *p.Stock
	}
	return prod
}

type Page struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
}

// TotalPages is ceil(total / limit).
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	n := total / limit
	if total%limit != 0 {
		n++
	}
	return n
}
