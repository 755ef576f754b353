package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"labtest-be/internal/blob"
	"labtest-be/internal/order"
	"labtest-be/internal/slot"

	"github.com/go-chi/chi/v5"
)

// multipart overhead allowed on top of the file size limit
const uploadSlack = 1 << 20

type notesRequest struct {
	Notes string `json:"notes"`
}

type statusRequest struct {
	Status order.Status `json:"status"`
	Notes  string       `json:"notes"`
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req order.CheckoutInput
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.Checkout(r.Context(), caller(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListMine(r.Context(), caller(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) FamilyMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.orders.ListFamily(r.Context(), caller(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, members)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "id"), caller(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), chi.URLParam(r, "id"), caller(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, o)
}

// --- staff ---

func parseDay(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(slot.DateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: dates must be YYYY-MM-DD", order.ErrInvalidInput)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := order.ListFilter{Page: queryInt(r, "page"), Limit: queryInt(r, "limit")}

	for _, s := range strings.Split(q.Get("status"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			f.Statuses = append(f.Statuses, order.Status(s))
		}
	}

	var err error
	if f.From, err = parseDay(q.Get("from"), false); err != nil {
		respondError(w, r, err)
		return
	}
	if f.To, err = parseDay(q.Get("to"), true); err != nil {
		respondError(w, r, err)
		return
	}

	page, err := h.orders.ListOrders(r.Context(), caller(r), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, page)
}

func (h *Handler) PendingOrders(w http.ResponseWriter, r *http.Request) {
	page, err := h.orders.ListPending(r.Context(), caller(r), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, page)
}

func (h *Handler) WorkingOrders(w http.ResponseWriter, r *http.Request) {
	page, err := h.orders.ListWorking(r.Context(), caller(r), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, page)
}

func (h *Handler) ApproveOrder(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.Approve(r.Context(), chi.URLParam(r, "id"), caller(r), req.Notes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) DenyOrder(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.Deny(r.Context(), chi.URLParam(r, "id"), caller(r), req.Notes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.Transition(r.Context(), chi.URLParam(r, "id"), req.Status, caller(r), req.Notes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, o)
}

// UploadReport expects the file in the multipart field "report".
func (h *Handler) UploadReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+uploadSlack)

	file, _, err := r.FormFile("report")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, r, blob.ErrTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("%w: report file is required", order.ErrInvalidInput))
		return
	}
	defer file.Close()

	up, err := blob.Accept(file, h.maxUpload)
	if err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.AttachReport(r.Context(), chi.URLParam(r, "id"), order.ReportUpload{
		Filename:    up.Name,
		ContentType: up.ContentType,
		Body:        up.Body,
	}, caller(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, o)
}
