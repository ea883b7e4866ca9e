package domain

import "time"

type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart keeps one line per product, in the order products were first added.
// A cart emptied by removals is the same state as a fresh cart.
type Cart struct {
	ID        string     `json:"id"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func New(id string, now time.Time) Cart {
	return Cart{ID: id, Items: []LineItem{}, CreatedAt: now, UpdatedAt: now}
}

func (c Cart) Empty() bool { return len(c.Items) == 0 }

func (c Cart) Line(productID string) (LineItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return LineItem{}, false
}

// Add increments the product's line, or appends a new line with quantity 1.
func (c *Cart) Add(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity++
			return
		}
	}
	c.Items = append(c.Items, LineItem{ProductID: productID, Quantity: 1})
}

// Remove drops the whole line for productID.
func (c *Cart) Remove(productID string) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return ErrNotInCart
}

// Settle subtracts purchased quantities, dropping lines that reach zero.
// Quantity added to a line after checkout read the cart survives.
func (c *Cart) Settle(purchased []LineItem) {
	bought := make(map[string]int, len(purchased))
	for _, p := range purchased {
		bought[p.ProductID] += p.Quantity
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		it.Quantity -= bought[it.ProductID]
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

// Clone returns a copy that shares no item storage with c.
func (c Cart) Clone() Cart {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}
