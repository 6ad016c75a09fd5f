// Package mobile serves the aggregated "my stuff" endpoints the mobile app
// reads: communities the caller belongs to and events in those communities.
//
// Membership is resolved by the caller's normalized email on member records,
// so devotees enrolled before they had an account still see their data.
package mobile

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/docstore"
	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/app/system/normalize"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
	"github.com/sevahub/sevahub/internal/domain/models"
)

// Handler is the feature-level entry point for the mobile surface.
type Handler struct {
	Communities *docstore.Collection
	Members     *docstore.Collection
	Events      *docstore.Collection
	Log         *zap.Logger
}

// NewHandler constructs a mobile Handler.
func NewHandler(reg *docstore.Registry, logger *zap.Logger) *Handler {
	return &Handler{
		Communities: reg.Communities,
		Members:     reg.Members,
		Events:      reg.Events,
		Log:         logger,
	}
}

// Routes mounts the mobile routes. The mount point already requires an
// authenticated user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/me/communities", h.ServeMyCommunities)
	r.Get("/me/events", h.ServeMyEvents)
	return r
}

// communityIDs returns the ids of communities the user belongs to, matched
// by user id or normalized email on member records.
func (h *Handler) communityIDs(ctx context.Context, u *models.User) ([]string, error) {
	byID, err := h.Members.Find(docstore.Document{"user_id": u.ID}).All(ctx)
	if err != nil {
		return nil, err
	}
	byEmail, err := h.Members.Find(docstore.Document{"email": normalize.Email(u.Email)}).All(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var ids []string
	for _, m := range append(byID, byEmail...) {
		if cid, ok := m["community_id"].(string); ok && cid != "" && !seen[cid] {
			seen[cid] = true
			ids = append(ids, cid)
		}
	}
	return ids, nil
}

// ServeMyCommunities lists the caller's communities.
//
// GET /api/mobile/me/communities
func (h *Handler) ServeMyCommunities(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "my communities")
	defer cancel()

	ids, err := h.communityIDs(ctx, u)
	if err != nil {
		h.Log.Error("membership lookup failed", zap.String("user_id", u.ID), zap.Error(err))
		respond.Internal(w)
		return
	}

	communities := []docstore.Document{}
	if len(ids) > 0 {
		communities, err = h.Communities.Find(docstore.Document{
			"_id": docstore.Document{"$in": toAny(ids)},
		}).Sort("name", 1).All(ctx)
		if err != nil {
			h.Log.Error("community fetch failed", zap.Error(err))
			respond.Internal(w)
			return
		}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"communities": communities})
}

// ServeMyEvents lists upcoming and recent events across the caller's
// communities.
//
// GET /api/mobile/me/events
func (h *Handler) ServeMyEvents(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "my events")
	defer cancel()

	ids, err := h.communityIDs(ctx, u)
	if err != nil {
		h.Log.Error("membership lookup failed", zap.String("user_id", u.ID), zap.Error(err))
		respond.Internal(w)
		return
	}

	events := []docstore.Document{}
	if len(ids) > 0 {
		events, err = h.Events.Find(docstore.Document{
			"community_id": docstore.Document{"$in": toAny(ids)},
		}).Sort("starts_at", -1).All(ctx)
		if err != nil {
			h.Log.Error("event fetch failed", zap.Error(err))
			respond.Internal(w)
			return
		}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"events": events})
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
