package domain

import "errors"

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrNotInCart    = errors.New("product not in cart")
)
