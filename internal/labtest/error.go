package labtest

import "errors"

var (
	ErrTestNotFound  = errors.New("lab test not found")
	ErrNoUpdateField = errors.New("no fields to update")
	ErrInvalidPrice  = errors.New("price must not be negative")
	ErrInvalidStatus = errors.New("status must be active or disabled")
)
