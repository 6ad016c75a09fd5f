package applications

import (
	"github.com/go-chi/chi/v5"

	"github.com/sevahub/sevahub/internal/app/system/authz"
)

// Routes mounts application routes. Submission is open to any authenticated
// user; review and decisions sit at the community_owner tier.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.HandleCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRole("community_owner"))
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeGet)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Post("/{id}/approve", h.HandleApprove)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
