package applications

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/waffle/pantry/query"

	"github.com/sevahub/sevahub/internal/app/store/docstore"
	"github.com/sevahub/sevahub/internal/app/system/normalize"
	"github.com/sevahub/sevahub/internal/app/system/paging"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
)

// Application status values.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusDeleted  = "deleted"
)

// ServeList returns applications, filterable by community and status.
// Soft-deleted applications only show up when asked for explicitly.
//
// GET /api/applications?community_id=&status=&page=&limit=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)
	filter := docstore.Document{}
	if cid := query.Get(r, "community_id"); cid != "" {
		filter["community_id"] = cid
	}
	if s := query.Get(r, "status"); s != "" {
		filter["status"] = s
	} else {
		filter["status"] = docstore.Document{
			"$in": []any{StatusPending, StatusApproved, StatusRejected},
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "application list")
	defer cancel()

	rows, err := h.Applications.Find(filter).
		Sort("created_at", -1).
		Skip(p.Skip()).
		Limit(p.FetchLimit()).
		All(ctx)
	if err != nil {
		h.Log.Error("application list failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	meta := paging.Trim(&rows, p)
	if rows == nil {
		rows = []docstore.Document{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"applications": rows, "meta": meta})
}

// ServeGet returns one application.
//
// GET /api/applications/{id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "application get")
	defer cancel()

	doc, err := h.Applications.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil || doc["status"] == StatusDeleted {
		respond.NotFound(w, "application")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleCreate submits a new application.
//
// POST /api/applications
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var doc docstore.Document
	if err := respond.Decode(r, &doc); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	email, _ := doc["email"].(string)
	name, _ := doc["full_name"].(string)
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		respond.Error(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if strings.TrimSpace(name) == "" {
		respond.Error(w, http.StatusBadRequest, "full_name is required")
		return
	}
	doc["email"] = normalize.Email(email)
	doc["status"] = StatusPending

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "application create")
	defer cancel()

	saved, err := h.Applications.Save(ctx, doc)
	if err != nil {
		h.Log.Error("application create failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	respond.JSON(w, http.StatusCreated, saved)
}

// HandleUpdate applies a partial update to an application. The status field
// is managed by the approve and delete endpoints and rejected here, except
// for marking a rejection.
//
// PUT /api/applications/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var update docstore.Document
	if err := respond.Decode(r, &update); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if s, ok := statusIn(update); ok && s != StatusRejected && s != StatusPending {
		respond.Error(w, http.StatusBadRequest, "status can only move to pending or rejected here; use /approve")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "application update")
	defer cancel()

	doc, err := h.Applications.FindByIDAndUpdate(ctx, chi.URLParam(r, "id"), update)
	if err != nil {
		if errors.Is(err, docstore.ErrBadOperator) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "application")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleDelete soft-deletes an application by moving it to status deleted.
// The record stays in the store for audit purposes.
//
// DELETE /api/applications/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "application delete")
	defer cancel()

	doc, err := h.Applications.FindByIDAndUpdate(ctx, chi.URLParam(r, "id"),
		docstore.Document{"$set": docstore.Document{"status": StatusDeleted}})
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "application")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": StatusDeleted})
}

// statusIn extracts a status value from a flat or $set-style update.
func statusIn(update docstore.Document) (string, bool) {
	if s, ok := update["status"].(string); ok {
		return s, true
	}
	if set, ok := update["$set"].(map[string]any); ok {
		if s, ok := set["status"].(string); ok {
			return s, true
		}
	}
	return "", false
}
