package applications

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/activity"
	"github.com/sevahub/sevahub/internal/app/store/docstore"
	"github.com/sevahub/sevahub/internal/app/store/identity"
	"github.com/sevahub/sevahub/internal/app/system/authz"
	"github.com/sevahub/sevahub/internal/app/system/mailer"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
	"github.com/sevahub/sevahub/internal/domain/models"
)

// HandleApprove approves a pending application: the applicant gets a user
// account if one does not already exist for their (normalized) email, the
// application moves to approved with the resolved user id attached, and an
// approval email goes out best-effort.
//
// POST /api/applications/{id}/approve
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "application approve")
	defer cancel()

	app, err := h.Applications.FindByID(ctx, id)
	if err != nil {
		respond.Internal(w)
		return
	}
	if app == nil || app["status"] == StatusDeleted {
		respond.NotFound(w, "application")
		return
	}
	if app["status"] == StatusApproved {
		respond.Error(w, http.StatusConflict, "application is already approved")
		return
	}

	email, _ := app["email"].(string)
	fullName, _ := app["full_name"].(string)
	phone, _ := app["phone"].(string)

	// Find-or-create: approval of a second application for the same person
	// must not mint a second account.
	user, err := h.Ident.FindUserByEmail(ctx, email)
	if err != nil {
		respond.Internal(w)
		return
	}
	if user == nil {
		user, err = h.Ident.CreateUser(ctx, identity.NewUser{
			Email:    email,
			FullName: fullName,
			Phone:    phone,
			Status:   "active",
			Roles:    []string{"community_member"},
		})
		if err != nil {
			if errors.Is(err, identity.ErrPersistence) {
				respond.Error(w, http.StatusServiceUnavailable, "approval is temporarily unavailable")
				return
			}
			h.Log.Error("approve: user create failed", zap.String("application_id", id), zap.Error(err))
			respond.Internal(w)
			return
		}
	}

	updated, err := h.Applications.FindByIDAndUpdate(ctx, id, docstore.Document{
		"$set": docstore.Document{"status": StatusApproved, "user_id": user.ID},
	})
	if err != nil || updated == nil {
		h.Log.Error("approve: application update failed", zap.String("application_id", id), zap.Error(err))
		respond.Internal(w)
		return
	}

	if h.Activity != nil {
		_, uid, _ := authz.UserCtx(r)
		if err := h.Activity.Record(ctx, models.ActivityRecord{
			UserID: uid, Action: activity.ActionApplicationDecided,
			Entity: "application", EntityID: id, Detail: StatusApproved,
		}); err != nil {
			h.Log.Warn("activity record failed", zap.Error(err))
		}
	}

	if h.Mail != nil {
		communityName := h.communityName(r, updated)
		msg := mailer.BuildApprovalEmail(mailer.ApprovalEmailData{
			SiteName:      h.SiteName,
			FullName:      user.FullName,
			Email:         user.Email,
			CommunityName: communityName,
			BaseURL:       h.BaseURL,
		})
		if err := h.Mail.Send(ctx, msg); err != nil {
			h.Log.Warn("approval email failed", zap.String("email", user.Email), zap.Error(err))
		}
	}

	respond.JSON(w, http.StatusOK, map[string]any{"application": updated, "user": user})
}

func (h *Handler) communityName(r *http.Request, app docstore.Document) string {
	cid, _ := app["community_id"].(string)
	if cid == "" {
		return ""
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "community name lookup")
	defer cancel()
	community, err := h.Communities.FindByID(ctx, cid)
	if err != nil || community == nil {
		return ""
	}
	name, _ := community["name"].(string)
	return name
}
