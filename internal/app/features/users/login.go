package users

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/activity"
	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
	"github.com/sevahub/sevahub/internal/domain/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and returns a signed token.
//
// POST /api/users/login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.Limits != nil {
		if allowed, reason := h.Limits.Check(r, req.Email); !allowed {
			respond.Error(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "user login")
	defer cancel()

	u, err := h.Ident.FindUserByEmail(ctx, req.Email)
	if err != nil || u == nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		// Same answer for unknown email and wrong password.
		respond.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if u.Status != "" && u.Status != "active" {
		respond.Error(w, http.StatusForbidden, "account is not active")
		return
	}

	token, err := h.Auth.Sign(u)
	if err != nil {
		h.Log.Error("token sign failed", zap.Error(err))
		respond.Internal(w)
		return
	}

	if h.Limits != nil {
		h.Limits.ResetEmail(u.Email)
	}

	if updated, err := h.Ident.UpdateUserLastLogin(ctx, u.ID); err == nil && updated != nil {
		u = updated
	}

	h.record(ctx, models.ActivityRecord{
		UserID: u.ID, Action: activity.ActionLogin, Entity: "user", EntityID: u.ID,
	})

	respond.JSON(w, http.StatusOK, authResponse{Token: token, User: u})
}
