package handler

import (
	"net/http"
	"time"

	"labtest-be/internal/auth"
	"labtest-be/internal/user"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req user.RegisterInput
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	session, err := h.users.Register(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.setSessionCookie(w, session.Token, 24*time.Hour)
	respond(w, http.StatusCreated, session)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	session, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.setSessionCookie(w, session.Token, 24*time.Hour)
	respond(w, http.StatusOK, session)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -time.Second)
	respondMessage(w, http.StatusOK, "logged out")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Me(r.Context(), caller(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, u)
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req user.CreateStaffInput
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	u, err := h.users.CreateStaff(r.Context(), caller(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, u)
}

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListStaff(r.Context(), caller(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, users)
}
