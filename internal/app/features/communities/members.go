package communities

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/docstore"
	"github.com/sevahub/sevahub/internal/app/system/paging"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
)

type memberListResponse struct {
	Members []docstore.Document `json:"members"`
	Meta    paging.Meta         `json:"meta"`
}

// ServeMembers lists the member roster of one community.
//
// GET /api/communities/{id}/members
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "community members")
	defer cancel()

	community, err := h.Communities.FindByID(ctx, id)
	if err != nil {
		respond.Internal(w)
		return
	}
	if community == nil {
		respond.NotFound(w, "community")
		return
	}

	rows, err := h.Members.Find(docstore.Document{"community_id": id}).
		Sort("created_at", -1).
		Skip(p.Skip()).
		Limit(p.FetchLimit()).
		All(ctx)
	if err != nil {
		h.Log.Error("member roster failed", zap.String("community_id", id), zap.Error(err))
		respond.Internal(w)
		return
	}
	meta := paging.Trim(&rows, p)
	if rows == nil {
		rows = []docstore.Document{}
	}
	respond.JSON(w, http.StatusOK, memberListResponse{Members: rows, Meta: meta})
}

// HandleAddMember attaches a member record to the community.
//
// POST /api/communities/{id}/members
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var doc docstore.Document
	if err := respond.Decode(r, &doc); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	doc["community_id"] = id

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "member add")
	defer cancel()

	community, err := h.Communities.FindByID(ctx, id)
	if err != nil {
		respond.Internal(w)
		return
	}
	if community == nil {
		respond.NotFound(w, "community")
		return
	}

	saved, err := h.Members.Save(ctx, doc)
	if err != nil {
		h.Log.Error("member add failed", zap.String("community_id", id), zap.Error(err))
		respond.Internal(w)
		return
	}
	respond.JSON(w, http.StatusCreated, saved)
}

// HandleRemoveMember detaches a member record from the community.
//
// DELETE /api/communities/{id}/members/{memberID}
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberID")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "member remove")
	defer cancel()

	member, err := h.Members.FindByID(ctx, memberID)
	if err != nil {
		respond.Internal(w)
		return
	}
	if member == nil || member["community_id"] != id {
		respond.NotFound(w, "member")
		return
	}
	if _, err := h.Members.FindByIDAndDelete(ctx, memberID); err != nil {
		h.Log.Error("member remove failed", zap.String("member_id", memberID), zap.Error(err))
		respond.Internal(w)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
