package domain

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateCode   = errors.New("product code already exists")
	ErrInvalidInput    = errors.New("invalid input")
)
