package slot

import "errors"

var (
	ErrInvalidSlot = errors.New("invalid appointment slot")
	ErrPastDate    = errors.New("cannot book slots for past dates")
)
