package handler

import (
	"net/http"

	"labtest-be/internal/logger"
	"labtest-be/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
	Limiter        *middleware.RateLimiter
	Metrics        http.Handler
	// UploadDir is served at /uploads when reports live on local disk.
	UploadDir string
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}
	if cfg.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware)
		}

		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)

		r.Get("/tests", h.ListTests)
		r.Get("/tests/{id}", h.GetTest)
		r.Get("/slots", h.AvailableSlots)
		r.Get("/slots/windows", h.SlotWindows)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/auth/me", h.Me)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Post("/items", h.AddToCart)
				r.Put("/items/{testId}", h.UpdateCartItem)
				r.Delete("/items/{testId}", h.RemoveCartItem)
				r.Delete("/", h.ClearCart)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.Checkout)
				r.Get("/mine", h.MyOrders)
				r.Get("/family-members", h.FamilyMembers)
				r.Get("/{id}", h.GetOrder)
				r.Put("/{id}/cancel", h.CancelOrder)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireStaff)

			r.Put("/tests/{id}", h.UpdateTest)

			r.Get("/orders", h.ListOrders)
			r.Get("/orders/pending", h.PendingOrders)
			r.Get("/orders/working", h.WorkingOrders)
			r.Put("/orders/{id}/approve", h.ApproveOrder)
			r.Put("/orders/{id}/deny", h.DenyOrder)
			r.Put("/orders/{id}/status", h.UpdateOrderStatus)
			r.Post("/orders/{id}/report", h.UploadReport)

			r.Get("/staff", h.ListStaff)
			r.Post("/staff", h.CreateStaff)
		})
	})

	return r
}
