package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotResolved     = errors.New("variant not resolved")
	ErrStockExceeded   = errors.New("stock exceeded")
	ErrEmptyCart       = errors.New("empty cart")
)
