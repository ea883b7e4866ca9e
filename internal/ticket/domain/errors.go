package domain

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrCodeCollision is retryable: generate a new code and try again.
	ErrCodeCollision = errors.New("ticket code collision")
	ErrNoLines       = errors.New("ticket has no lines")
)
