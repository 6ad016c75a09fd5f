package users

import (
	"github.com/go-chi/chi/v5"

	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/app/system/authz"
)

// Routes mounts all user routes under the base path (typically "/api/users").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Public: account creation and login.
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)

	// Authenticated routes.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)

		pr.Get("/me", h.ServeMe)
		pr.Get("/{id}", h.ServeGet)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Put("/{id}/password", h.HandlePassword)
	})

	// Admin-only routes.
	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireAdmin)

		pr.Get("/", h.ServeList)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
