// Package users exposes account registration, login, and user management.
//
// All resolution goes through the identity service so the process-local
// cache stays warm; the paged admin listing reads the authoritative store
// directly.
package users

import (
	"context"

	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/identity"
	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/app/system/mailer"
	"github.com/sevahub/sevahub/internal/app/system/ratelimit"
	"github.com/sevahub/sevahub/internal/domain/models"
)

// Lister provides the paged admin listing that bypasses the cache.
type Lister interface {
	List(ctx context.Context, skip, limit int) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
}

// Recorder appends activity records. A nil Recorder disables logging.
type Recorder interface {
	Record(ctx context.Context, rec models.ActivityRecord) error
}

// Handler is the feature-level entry point for Users.
type Handler struct {
	Ident    *identity.Service
	Users    Lister
	Auth     *auth.Manager
	Mail     *mailer.Mailer
	Activity Recorder
	Limits   *ratelimit.LoginLimiter
	BaseURL  string
	SiteName string
	Log      *zap.Logger
}

// NewHandler constructs a Users handler.
func NewHandler(ident *identity.Service, users Lister, am *auth.Manager, mail *mailer.Mailer, act Recorder, baseURL, siteName string, logger *zap.Logger) *Handler {
	return &Handler{
		Ident:    ident,
		Users:    users,
		Auth:     am,
		Mail:     mail,
		Activity: act,
		Limits:   ratelimit.NewLoginLimiter(),
		BaseURL:  baseURL,
		SiteName: siteName,
		Log:      logger,
	}
}

// record appends an activity entry, best-effort.
func (h *Handler) record(ctx context.Context, rec models.ActivityRecord) {
	if h.Activity == nil {
		return
	}
	if err := h.Activity.Record(ctx, rec); err != nil {
		h.Log.Warn("activity record failed", zap.String("action", rec.Action), zap.Error(err))
	}
}
