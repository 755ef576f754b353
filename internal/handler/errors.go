package handler

import (
	"errors"
	"net/http"

	"labtest-be/internal/blob"
	"labtest-be/internal/cart"
	"labtest-be/internal/labtest"
	"labtest-be/internal/logger"
	"labtest-be/internal/order"
	"labtest-be/internal/slot"
	"labtest-be/internal/user"
	"labtest-be/internal/utils"

	"go.uber.org/zap"
)

var classStatus = map[order.Class]int{
	order.ClassNotFound:     http.StatusNotFound,
	order.ClassForbidden:    http.StatusForbidden,
	order.ClassConflict:     http.StatusConflict,
	order.ClassInvalidInput: http.StatusBadRequest,
}

// statusFor maps a service error to an HTTP status. The message is only
// echoed for non-internal errors.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadJSON),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrMissingTestID),
		errors.Is(err, labtest.ErrNoUpdateField),
		errors.Is(err, labtest.ErrInvalidPrice),
		errors.Is(err, labtest.ErrInvalidStatus),
		errors.Is(err, slot.ErrInvalidSlot),
		errors.Is(err, slot.ErrPastDate),
		errors.Is(err, blob.ErrUnsupportedType),
		errors.Is(err, blob.ErrTooLarge),
		errors.Is(err, blob.ErrEmptyFile),
		errors.Is(err, user.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, cart.ErrUserNotAuthenticated),
		errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, user.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, cart.ErrTestNotFound),
		errors.Is(err, cart.ErrCartItemNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, labtest.ErrTestNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrEmailExists):
		return http.StatusConflict
	}

	if code, ok := classStatus[order.Classify(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("layer", "handler"),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal server error"
	}
	utils.WriteJSON(w, code, envelope{Success: false, Message: msg})
}
