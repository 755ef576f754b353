package cart

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUserNotAuthenticated = errors.New("user not authenticated")

	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrMissingTestID   = errors.New("test id is required")

	// -- Resource State --
	ErrTestNotFound     = errors.New("lab test not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartNotFound     = errors.New("cart not found")
)
