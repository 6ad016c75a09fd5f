package users

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/activity"
	"github.com/sevahub/sevahub/internal/app/store/identity"
	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/app/system/mailer"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
	"github.com/sevahub/sevahub/internal/domain/models"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// HandleRegister creates an account and returns a signed token.
//
// POST /api/users/register
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respond.Error(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		respond.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "user register")
	defer cancel()

	// Idempotent on email: an existing account is a conflict, not a
	// second account.
	if existing, err := h.Ident.FindUserByEmail(ctx, req.Email); err == nil && existing != nil {
		respond.Error(w, http.StatusConflict, "an account with that email already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("password hash failed", zap.Error(err))
		respond.Internal(w)
		return
	}

	u, err := h.Ident.CreateUser(ctx, identity.NewUser{
		Email:        req.Email,
		FullName:     req.FullName,
		Phone:        req.Phone,
		PasswordHash: hash,
		Status:       "active",
	})
	if err != nil {
		if errors.Is(err, identity.ErrDuplicateEmail) {
			respond.Error(w, http.StatusConflict, "an account with that email already exists")
			return
		}
		if errors.Is(err, identity.ErrPersistence) {
			h.Log.Error("user create not durable", zap.Error(err))
			respond.Error(w, http.StatusServiceUnavailable, "account creation is temporarily unavailable")
			return
		}
		h.Log.Error("user create failed", zap.Error(err))
		respond.Internal(w)
		return
	}

	token, err := h.Auth.Sign(u)
	if err != nil {
		h.Log.Error("token sign failed", zap.Error(err))
		respond.Internal(w)
		return
	}

	h.record(ctx, models.ActivityRecord{
		UserID: u.ID, Action: activity.ActionUserCreated, Entity: "user", EntityID: u.ID,
	})

	if h.Mail != nil {
		msg := mailer.BuildWelcomeEmail(mailer.WelcomeEmailData{
			SiteName: h.SiteName,
			FullName: u.FullName,
			Email:    u.Email,
			BaseURL:  h.BaseURL,
		})
		if err := h.Mail.Send(ctx, msg); err != nil {
			h.Log.Warn("welcome email failed", zap.String("email", u.Email), zap.Error(err))
		}
	}

	respond.JSON(w, http.StatusCreated, authResponse{Token: token, User: u})
}
