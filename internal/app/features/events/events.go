// Package events exposes CRUD over temple event records.
package events

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/waffle/pantry/query"

	"github.com/sevahub/sevahub/internal/app/store/docstore"
	"github.com/sevahub/sevahub/internal/app/system/authz"
	"github.com/sevahub/sevahub/internal/app/system/paging"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
)

// Handler is the feature-level entry point for Events.
type Handler struct {
	Events *docstore.Collection
	Log    *zap.Logger
}

// NewHandler constructs an Events handler.
func NewHandler(reg *docstore.Registry, logger *zap.Logger) *Handler {
	return &Handler{Events: reg.Events, Log: logger}
}

// Routes mounts event routes. Writes need the community_lead tier and up.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRole("community_lead"))
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}

// ServeList returns events, filterable by community and status, newest first
// by start time.
//
// GET /api/events?community_id=&status=&page=&limit=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)
	filter := docstore.Document{}
	if cid := query.Get(r, "community_id"); cid != "" {
		filter["community_id"] = cid
	}
	if s := query.Get(r, "status"); s != "" {
		filter["status"] = s
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "event list")
	defer cancel()

	rows, err := h.Events.Find(filter).
		Sort("starts_at", -1).
		Skip(p.Skip()).
		Limit(p.FetchLimit()).
		All(ctx)
	if err != nil {
		h.Log.Error("event list failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	meta := paging.Trim(&rows, p)
	if rows == nil {
		rows = []docstore.Document{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"events": rows, "meta": meta})
}

// ServeGet returns one event.
//
// GET /api/events/{id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "event get")
	defer cancel()

	doc, err := h.Events.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "event")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleCreate stores a new event.
//
// POST /api/events
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var doc docstore.Document
	if err := respond.Decode(r, &doc); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	title, _ := doc["title"].(string)
	if strings.TrimSpace(title) == "" {
		respond.Error(w, http.StatusBadRequest, "title is required")
		return
	}
	if _, ok := doc["status"]; !ok {
		doc["status"] = "scheduled"
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "event create")
	defer cancel()

	saved, err := h.Events.Save(ctx, doc)
	if err != nil {
		h.Log.Error("event create failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	respond.JSON(w, http.StatusCreated, saved)
}

// HandleUpdate applies a partial update to an event.
//
// PUT /api/events/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var update docstore.Document
	if err := respond.Decode(r, &update); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "event update")
	defer cancel()

	doc, err := h.Events.FindByIDAndUpdate(ctx, chi.URLParam(r, "id"), update)
	if err != nil {
		if errors.Is(err, docstore.ErrBadOperator) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "event")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleDelete removes an event.
//
// DELETE /api/events/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "event delete")
	defer cancel()

	doc, err := h.Events.FindByIDAndDelete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "event")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
