package communities

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

type listResponse struct {
	Communities []docstore.Document `json:"communities"`
	Meta        paging.Meta         `json:"meta"`
}

// ServeList returns communities, optionally filtered by status.
//
// GET /api/communities?status=&page=&limit=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)
	filter := docstore.Document{}
	if s := normalize.Status(query.Get(r, "status")); s != "" {
		filter["status"] = s
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "community list")
	defer cancel()

	rows, err := h.Communities.Find(filter).
		Sort("created_at", -1).
		Skip(p.Skip()).
		Limit(p.FetchLimit()).
		All(ctx)
	if err != nil {
		h.Log.Error("community list failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	meta := paging.Trim(&rows, p)
	if rows == nil {
		rows = []docstore.Document{}
	}
	respond.JSON(w, http.StatusOK, listResponse{Communities: rows, Meta: meta})
}

// ServeGet returns one community.
//
// GET /api/communities/{id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "community get")
	defer cancel()

	doc, err := h.Communities.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.Log.Error("community get failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "community")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleCreate stores a new community.
//
// POST /api/communities
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var doc docstore.Document
	if err := respond.Decode(r, &doc); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	name, _ := doc["name"].(string)
	if strings.TrimSpace(name) == "" {
		respond.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, ok := doc["status"]; !ok {
		doc["status"] = "active"
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "community create")
	defer cancel()

	saved, err := h.Communities.Save(ctx, doc)
	if err != nil {
		h.Log.Error("community create failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	respond.JSON(w, http.StatusCreated, saved)
}

// HandleUpdate applies a partial update to a community.
//
// PUT /api/communities/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var update docstore.Document
	if err := respond.Decode(r, &update); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "community update")
	defer cancel()

	doc, err := h.Communities.FindByIDAndUpdate(ctx, chi.URLParam(r, "id"), update)
	if err != nil {
		if errors.Is(err, docstore.ErrBadOperator) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error("community update failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "community")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleDelete removes a community. Admin only.
//
// DELETE /api/communities/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "community delete")
	defer cancel()

	doc, err := h.Communities.FindByIDAndDelete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.Log.Error("community delete failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "community")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
