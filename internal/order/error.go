package order

import "errors"

var (
	ErrNotFound          = errors.New("order not found")
	ErrForbidden         = errors.New("not allowed to act on this order")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInvalidState      = errors.New("order is not in a state that allows this action")
	ErrSlotConflict      = errors.New("appointment slot is already booked")
	ErrUploadFailed      = errors.New("report upload could not be verified")
	ErrConflict          = errors.New("order was modified concurrently")
	ErrInvalidInput      = errors.New("invalid input")

	// ErrStaleWrite is returned by repositories when a conditional status
	// update matched no row.
	ErrStaleWrite = errors.New("conditional update matched no order")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
	activeSlotIndex   = "orders_active_slot_key"
)

// Class is the transport-agnostic error classification.
type Class string

const (
	ClassNotFound     Class = "not_found"
	ClassForbidden    Class = "forbidden"
	ClassConflict     Class = "conflict"
	ClassInvalidInput Class = "invalid_input"
	ClassInternal     Class = "internal"
)

func Classify(err error) Class {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return ClassNotFound
	case errors.Is(err, ErrForbidden):
		return ClassForbidden
	case errors.Is(err, ErrSlotConflict),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInvalidState):
		return ClassConflict
	case errors.Is(err, ErrInvalidInput):
		return ClassInvalidInput
	default:
		return ClassInternal
	}
}
