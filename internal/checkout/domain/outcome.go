package domain

import (
	ticket "github.com/dmehra2102/storefront/internal/ticket/domain"
)

type LineStatus string

const (
	Fulfilled   LineStatus = "fulfilled"
	Unfulfilled LineStatus = "unfulfilled"
)

// Reason explains an Unfulfilled line. Empty for Fulfilled lines.
type Reason string

const (
	ReasonInsufficientStock Reason = "insufficient_stock"
	ReasonProductMissing    Reason = "product_missing"
)

type LineOutcome struct {
	ProductID string     `json:"product_id"`
	Quantity  int        `json:"quantity"`
	Status    LineStatus `json:"status"`
	Reason    Reason     `json:"reason,omitempty"`
}

// Result is the outcome of one checkout attempt. A nil Ticket means no line
// could be fulfilled and nothing was purchased.
type Result struct {
	Ticket *ticket.Ticket `json:"ticket"`
	Lines  []LineOutcome  `json:"lines"`
}

func (r Result) Fulfilled() []LineOutcome {
	return r.filter(Fulfilled)
}

func (r Result) Unfulfilled() []LineOutcome {
	return r.filter(Unfulfilled)
}

func (r Result) filter(s LineStatus) []LineOutcome {
	var out []LineOutcome
	for _, l := range r.Lines {
		if l.Status == s {
			out = append(out, l)
		}
	}
	return out
}

// Summary classifies the attempt: "empty" cart, "none" fulfilled, "partial" or "ticket".
func (r Result) Summary() string {
	switch {
	case len(r.Lines) == 0:
		return "empty"
	case r.Ticket == nil:
		return "none"
	case len(r.Unfulfilled()) > 0:
		return "partial"
	default:
		return "ticket"
	}
}
