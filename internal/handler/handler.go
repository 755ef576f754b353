// Package handler exposes the services over a chi HTTP router.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"labtest-be/internal/auth"
	"labtest-be/internal/cart"
	"labtest-be/internal/labtest"
	"labtest-be/internal/order"
	"labtest-be/internal/slot"
	"labtest-be/internal/user"
	"labtest-be/internal/utils"
)

const maxJSONBody = 1 << 20

// Slots is the read side of the slot ledger.
type Slots interface {
	AvailableWindows(ctx context.Context, date, serviceArea string) (slot.Availability, error)
	Windows() []string
}

type Deps struct {
	Users  user.Service
	Tests  labtest.Service
	Carts  cart.Service
	Orders order.Service
	Slots  Slots

	MaxUploadBytes int64
	SecureCookies  bool
}

type Handler struct {
	users  user.Service
	tests  labtest.Service
	carts  cart.Service
	orders order.Service
	slots  Slots

	maxUpload     int64
	secureCookies bool
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		users:         d.Users,
		tests:         d.Tests,
		carts:         d.Carts,
		orders:        d.Orders,
		slots:         d.Slots,
		maxUpload:     d.MaxUploadBytes,
		secureCookies: d.SecureCookies,
	}
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respond(w http.ResponseWriter, code int, data any) {
	utils.WriteJSON(w, code, envelope{Success: true, Data: data})
}

func respondMessage(w http.ResponseWriter, code int, msg string) {
	utils.WriteJSON(w, code, envelope{Success: true, Message: msg})
}

var errBadJSON = errors.New("invalid JSON body")

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errBadJSON
	}
	return nil
}

// caller returns the identity set by the auth middleware. Routes that call
// it sit behind RequireAuth, so a missing identity is a wiring bug.
func caller(r *http.Request) auth.Identity {
	id, _ := utils.IdentityFromContext(r.Context())
	return id
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
