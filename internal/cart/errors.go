package cart

import "errors"

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrItemNotFound      = errors.New("product not found in cart")
	ErrProductIDRequired = errors.New("product id is required")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")

	// ErrVersionConflict is returned by a Repository when the stored cart
	// changed since it was read.
	ErrVersionConflict = errors.New("cart version conflict")
	// ErrConflict is returned by the Store once its retries are exhausted.
	ErrConflict = errors.New("cart was modified concurrently")
)
