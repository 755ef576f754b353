package handler

import (
	"net/http"

	"labtest-be/internal/labtest"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListTests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tests, err := h.tests.List(r.Context(), labtest.ListFilter{
		Search:     q.Get("search"),
		Lab:        q.Get("lab"),
		OnlyActive: !caller(r).IsStaff(),
		Limit:      queryInt(r, "limit"),
		Offset:     queryInt(r, "offset"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, tests)
}

func (h *Handler) GetTest(w http.ResponseWriter, r *http.Request) {
	t, err := h.tests.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, t)
}

func (h *Handler) UpdateTest(w http.ResponseWriter, r *http.Request) {
	var req labtest.UpdateParams
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	t, err := h.tests.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, t)
}
