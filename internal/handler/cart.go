package handler

import (
	"net/http"

	"labtest-be/internal/cart"

	"github.com/go-chi/chi/v5"
)

type addItemRequest struct {
	TestID   string `json:"testId"`
	Quantity int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.GetCart(r.Context(), caller(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, cartView(c))
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	c, err := h.carts.AddToCart(r.Context(), cart.AddItemParams{
		UserID:   caller(r).ID,
		TestID:   req.TestID,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, cartView(c))
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), cart.UpdateQuantityParams{
		UserID:   caller(r).ID,
		TestID:   chi.URLParam(r, "testId"),
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, cartView(c))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveFromCart(r.Context(), caller(r).ID, chi.URLParam(r, "testId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, cartView(c))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.ClearCart(r.Context(), caller(r).ID); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "cart cleared")
}

type cartResponse struct {
	*cart.Cart
	TotalAmount int `json:"totalAmount"`
}

func cartView(c *cart.Cart) cartResponse {
	return cartResponse{Cart: c, TotalAmount: c.Total()}
}
