// Package tasks exposes CRUD over seva task records, with counter-style
// progress updates.
package tasks

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

// Handler is the feature-level entry point for Tasks.
type Handler struct {
	Tasks *docstore.Collection
	Log   *zap.Logger
}

// NewHandler constructs a Tasks handler.
func NewHandler(reg *docstore.Registry, logger *zap.Logger) *Handler {
	return &Handler{Tasks: reg.Tasks, Log: logger}
}

// Routes mounts task routes. Assignees report progress, so progress posts
// are open to any authenticated user; structural writes need volunteer_head.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)
	r.Post("/{id}/progress", h.HandleProgress)

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRole("volunteer_head"))
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}

// ServeList returns tasks, filterable by event and assignee.
//
// GET /api/tasks?event_id=&assignee_id=&page=&limit=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)
	filter := docstore.Document{}
	if eid := query.Get(r, "event_id"); eid != "" {
		filter["event_id"] = eid
	}
	if aid := query.Get(r, "assignee_id"); aid != "" {
		filter["assignee_id"] = aid
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "task list")
	defer cancel()

	rows, err := h.Tasks.Find(filter).
		Sort("created_at", -1).
		Skip(p.Skip()).
		Limit(p.FetchLimit()).
		All(ctx)
	if err != nil {
		h.Log.Error("task list failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	meta := paging.Trim(&rows, p)
	if rows == nil {
		rows = []docstore.Document{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"tasks": rows, "meta": meta})
}

// ServeGet returns one task.
//
// GET /api/tasks/{id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "task get")
	defer cancel()

	doc, err := h.Tasks.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "task")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleCreate stores a new task.
//
// POST /api/tasks
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
	if _, ok := doc["progress"]; !ok {
		doc["progress"] = 0
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "task create")
	defer cancel()

	saved, err := h.Tasks.Save(ctx, doc)
	if err != nil {
		h.Log.Error("task create failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	respond.JSON(w, http.StatusCreated, saved)
}

type progressRequest struct {
	Delta float64 `json:"delta"`
}

// HandleProgress bumps the task's progress counter by delta, routed through
// the adapter's $inc semantics so a missing or non-numeric prior value
// counts as zero.
//
// POST /api/tasks/{id}/progress
func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Delta == 0 {
		respond.Error(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "task progress")
	defer cancel()

	doc, err := h.Tasks.FindByIDAndUpdate(ctx, chi.URLParam(r, "id"),
		docstore.Document{"$inc": docstore.Document{"progress": req.Delta}})
	if err != nil {
		h.Log.Error("task progress failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "task")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleUpdate applies a partial update to a task.
//
// PUT /api/tasks/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var update docstore.Document
	if err := respond.Decode(r, &update); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "task update")
	defer cancel()

	doc, err := h.Tasks.FindByIDAndUpdate(ctx, chi.URLParam(r, "id"), update)
	if err != nil {
		if errors.Is(err, docstore.ErrBadOperator) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "task")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleDelete removes a task.
//
// DELETE /api/tasks/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "task delete")
	defer cancel()

	doc, err := h.Tasks.FindByIDAndDelete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "task")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
