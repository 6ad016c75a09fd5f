package users

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/activity"
	"github.com/sevahub/sevahub/internal/app/store/identity"
	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/app/system/authz"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
	"github.com/sevahub/sevahub/internal/domain/models"
)

// profileFields are the keys any user may change on their own record.
var profileFields = map[string]bool{
	"email":     true,
	"full_name": true,
	"phone":     true,
}

// adminFields additionally require the admin role.
var adminFields = map[string]bool{
	"status": true,
	"role":   true,
	"roles":  true,
}

// HandleUpdate applies a partial profile update. Admins can change role,
// roles, and status; everyone can change their own profile fields.
// Password keys are ignored here; password changes have their own endpoint.
//
// PUT /api/users/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !authz.CanManageUser(r, id) {
		respond.Error(w, http.StatusForbidden, "insufficient privileges")
		return
	}

	var body map[string]any
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	isAdmin := authz.IsAdmin(r)
	fields := make(map[string]any, len(body))
	for k, v := range body {
		switch {
		case profileFields[k]:
			fields[k] = v
		case adminFields[k]:
			if !isAdmin {
				respond.Errorf(w, http.StatusForbidden, "field %q requires admin", k)
				return
			}
			fields[k] = v
		case k == "password" || k == "password_hash" || k == "passwordHash":
			// dropped by the identity service as well
		default:
			respond.Errorf(w, http.StatusBadRequest, "unknown field %q", k)
			return
		}
	}
	if len(fields) == 0 {
		respond.Error(w, http.StatusBadRequest, "no updatable fields in request")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user update")
	defer cancel()

	u, err := h.Ident.UpdateUser(ctx, id, fields)
	if err != nil {
		if errors.Is(err, identity.ErrDuplicateEmail) {
			respond.Error(w, http.StatusConflict, "an account with that email already exists")
			return
		}
		h.Log.Error("user update failed", zap.String("user_id", id), zap.Error(err))
		respond.Internal(w)
		return
	}
	if u == nil {
		respond.NotFound(w, "user")
		return
	}

	h.record(ctx, models.ActivityRecord{
		UserID: actorID(r), Action: activity.ActionUserUpdated, Entity: "user", EntityID: id,
	})
	respond.JSON(w, http.StatusOK, u)
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandlePassword changes a user's password. Self-service requires the
// current password; admins can reset without it. Tokens issued before the
// change stop working.
//
// PUT /api/users/{id}/password
func (h *Handler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !authz.CanManageUser(r, id) {
		respond.Error(w, http.StatusForbidden, "insufficient privileges")
		return
	}

	var req passwordRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.NewPassword) < 8 {
		respond.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "password change")
	defer cancel()

	target, err := h.Ident.FindUserByID(ctx, id)
	if err != nil {
		respond.Internal(w)
		return
	}
	if target == nil {
		respond.NotFound(w, "user")
		return
	}

	if !authz.IsAdmin(r) && !auth.CheckPassword(target.PasswordHash, req.CurrentPassword) {
		respond.Error(w, http.StatusForbidden, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	if _, err := h.Ident.UpdateUserPassword(ctx, id, hash); err != nil {
		h.Log.Error("password update failed", zap.String("user_id", id), zap.Error(err))
		respond.Internal(w)
		return
	}

	h.record(ctx, models.ActivityRecord{
		UserID: actorID(r), Action: activity.ActionPasswordChanged, Entity: "user", EntityID: id,
	})
	respond.JSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

// HandleDelete removes a user. Admin only; admins cannot delete themselves.
//
// DELETE /api/users/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if actorID(r) == id {
		respond.Error(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user delete")
	defer cancel()

	if err := h.Ident.DeleteUser(ctx, id); err != nil {
		h.Log.Error("user delete failed", zap.String("user_id", id), zap.Error(err))
		respond.Internal(w)
		return
	}

	h.record(ctx, models.ActivityRecord{
		UserID: actorID(r), Action: activity.ActionUserDeleted, Entity: "user", EntityID: id,
	})
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func actorID(r *http.Request) string {
	_, uid, _ := authz.UserCtx(r)
	return uid
}
