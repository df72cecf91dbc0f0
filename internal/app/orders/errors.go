package orders

import "errors"

var (
	ErrNotFound    = errors.New("order not found")
	ErrInvalidData = errors.New("invalid data")
	ErrTimeout     = errors.New("timeout")
	ErrUnexpected  = errors.New("unexpected error")
)
