package communities

import (
	"github.com/go-chi/chi/v5"

	"github.com/sevahub/sevahub/internal/app/system/authz"
)

// Routes mounts all community routes under the base path
// (typically "/api/communities"). The mount point already requires an
// authenticated user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)
	r.Get("/{id}/members", h.ServeMembers)

	// Community management is gated at the owner tier and up.
	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRole("community_owner"))

		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Post("/{id}/members", h.HandleAddMember)
		pr.Delete("/{id}/members/{memberID}", h.HandleRemoveMember)
	})

	r.With(authz.RequireAdmin).Delete("/{id}", h.HandleDelete)

	return r
}
