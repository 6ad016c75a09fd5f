package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/app/system/authz"
	"github.com/sevahub/sevahub/internal/app/system/paging"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
	"github.com/sevahub/sevahub/internal/domain/models"
)

// ServeMe returns the authenticated user's own record.
//
// GET /api/users/me
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

// ServeGet returns a user by id. Admins can read anyone; others themselves.
//
// GET /api/users/{id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !authz.CanManageUser(r, id) {
		respond.Error(w, http.StatusForbidden, "insufficient privileges")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user get")
	defer cancel()

	u, err := h.Ident.FindUserByID(ctx, id)
	if err != nil {
		h.Log.Error("user lookup failed", zap.String("user_id", id), zap.Error(err))
		respond.Internal(w)
		return
	}
	if u == nil {
		respond.NotFound(w, "user")
		return
	}
	respond.JSON(w, http.StatusOK, u)
}

type listResponse struct {
	Users []models.User `json:"users"`
	Meta  paging.Meta   `json:"meta"`
}

// ServeList returns a paged listing of all users. Admin only.
//
// GET /api/users?page=&limit=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user list")
	defer cancel()

	rows, err := h.Users.List(ctx, p.Skip(), p.FetchLimit())
	if err != nil {
		h.Log.Error("user list failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	meta := paging.Trim(&rows, p)
	if rows == nil {
		rows = []models.User{}
	}
	respond.JSON(w, http.StatusOK, listResponse{Users: rows, Meta: meta})
}
