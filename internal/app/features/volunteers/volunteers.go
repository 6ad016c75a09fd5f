// Package volunteers exposes CRUD over volunteer (seva) records.
package volunteers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/waffle/pantry/query"

	"github.com/sevahub/sevahub/internal/app/store/docstore"
	"github.com/sevahub/sevahub/internal/app/system/authz"
	"github.com/sevahub/sevahub/internal/app/system/normalize"
	"github.com/sevahub/sevahub/internal/app/system/paging"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
)

// Handler is the feature-level entry point for Volunteers.
type Handler struct {
	Volunteers *docstore.Collection
	Log        *zap.Logger
}

// NewHandler constructs a Volunteers handler.
func NewHandler(reg *docstore.Registry, logger *zap.Logger) *Handler {
	return &Handler{Volunteers: reg.Volunteers, Log: logger}
}

// Routes mounts volunteer routes. Writes need the volunteer_head tier.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRole("volunteer_head"))
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}

// ServeList returns volunteers, filterable by community and status.
//
// GET /api/volunteers?community_id=&status=&page=&limit=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)
	filter := docstore.Document{}
	if cid := query.Get(r, "community_id"); cid != "" {
		filter["community_id"] = cid
	}
	if s := normalize.Status(query.Get(r, "status")); s != "" {
		filter["status"] = s
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "volunteer list")
	defer cancel()

	rows, err := h.Volunteers.Find(filter).
		Sort("created_at", -1).
		Skip(p.Skip()).
		Limit(p.FetchLimit()).
		All(ctx)
	if err != nil {
		h.Log.Error("volunteer list failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	meta := paging.Trim(&rows, p)
	if rows == nil {
		rows = []docstore.Document{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"volunteers": rows, "meta": meta})
}

// ServeGet returns one volunteer record.
//
// GET /api/volunteers/{id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "volunteer get")
	defer cancel()

	doc, err := h.Volunteers.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "volunteer")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleCreate stores a new volunteer record.
//
// POST /api/volunteers
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var doc docstore.Document
	if err := respond.Decode(r, &doc); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	name, _ := doc["full_name"].(string)
	if strings.TrimSpace(name) == "" {
		respond.Error(w, http.StatusBadRequest, "full_name is required")
		return
	}
	if email, ok := doc["email"].(string); ok {
		doc["email"] = normalize.Email(email)
	}
	if _, ok := doc["status"]; !ok {
		doc["status"] = "active"
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "volunteer create")
	defer cancel()

	saved, err := h.Volunteers.Save(ctx, doc)
	if err != nil {
		h.Log.Error("volunteer create failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	respond.JSON(w, http.StatusCreated, saved)
}

// HandleUpdate applies a partial update to a volunteer record.
//
// PUT /api/volunteers/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var update docstore.Document
	if err := respond.Decode(r, &update); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "volunteer update")
	defer cancel()

	doc, err := h.Volunteers.FindByIDAndUpdate(ctx, chi.URLParam(r, "id"), update)
	if err != nil {
		if errors.Is(err, docstore.ErrBadOperator) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "volunteer")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleDelete removes a volunteer record.
//
// DELETE /api/volunteers/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "volunteer delete")
	defer cancel()

	doc, err := h.Volunteers.FindByIDAndDelete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "volunteer")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
