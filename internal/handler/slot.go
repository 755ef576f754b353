package handler

import (
	"net/http"
)

func (h *Handler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	avail, err := h.slots.AvailableWindows(r.Context(), q.Get("date"), q.Get("serviceArea"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, avail)
}

func (h *Handler) SlotWindows(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.slots.Windows())
}
