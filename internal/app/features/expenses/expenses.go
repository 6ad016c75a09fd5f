// Package expenses exposes CRUD over temple expense records.
package expenses

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/waffle/pantry/query"

	"github.com/sevahub/sevahub/internal/app/store/activity"
	"github.com/sevahub/sevahub/internal/app/store/docstore"
	"github.com/sevahub/sevahub/internal/app/system/authz"
	"github.com/sevahub/sevahub/internal/app/system/paging"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
	"github.com/sevahub/sevahub/internal/domain/models"
)

// Recorder appends activity records. A nil Recorder disables logging.
type Recorder interface {
	Record(ctx context.Context, rec models.ActivityRecord) error
}

// Handler is the feature-level entry point for Expenses.
type Handler struct {
	Expenses *docstore.Collection
	Activity Recorder
	Log      *zap.Logger
}

// NewHandler constructs an Expenses handler.
func NewHandler(reg *docstore.Registry, act Recorder, logger *zap.Logger) *Handler {
	return &Handler{Expenses: reg.Expenses, Activity: act, Log: logger}
}

// Routes mounts expense routes. All access is finance_team tier and up.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireRole("finance_team"))

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)
	r.Post("/", h.HandleCreate)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}

// ServeList returns expenses, filterable by community and category.
//
// GET /api/expenses?community_id=&category=&page=&limit=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)
	filter := docstore.Document{}
	if cid := query.Get(r, "community_id"); cid != "" {
		filter["community_id"] = cid
	}
	if c := query.Get(r, "category"); c != "" {
		filter["category"] = c
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "expense list")
	defer cancel()

	rows, err := h.Expenses.Find(filter).
		Sort("created_at", -1).
		Skip(p.Skip()).
		Limit(p.FetchLimit()).
		All(ctx)
	if err != nil {
		h.Log.Error("expense list failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	meta := paging.Trim(&rows, p)
	if rows == nil {
		rows = []docstore.Document{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"expenses": rows, "meta": meta})
}

// ServeGet returns one expense record.
//
// GET /api/expenses/{id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "expense get")
	defer cancel()

	doc, err := h.Expenses.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "expense")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleCreate stores a new expense record.
//
// POST /api/expenses
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var doc docstore.Document
	if err := respond.Decode(r, &doc); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if amt, ok := doc["amount"].(float64); !ok || amt <= 0 {
		respond.Error(w, http.StatusBadRequest, "a positive amount is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "expense create")
	defer cancel()

	saved, err := h.Expenses.Save(ctx, doc)
	if err != nil {
		h.Log.Error("expense create failed", zap.Error(err))
		respond.Internal(w)
		return
	}

	if h.Activity != nil {
		_, uid, _ := authz.UserCtx(r)
		id, _ := saved["id"].(string)
		if err := h.Activity.Record(ctx, models.ActivityRecord{
			UserID: uid, Action: activity.ActionExpenseCreated, Entity: "expense", EntityID: id,
		}); err != nil {
			h.Log.Warn("activity record failed", zap.Error(err))
		}
	}
	respond.JSON(w, http.StatusCreated, saved)
}

// HandleUpdate applies a partial update to an expense record.
//
// PUT /api/expenses/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var update docstore.Document
	if err := respond.Decode(r, &update); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "expense update")
	defer cancel()

	doc, err := h.Expenses.FindByIDAndUpdate(ctx, chi.URLParam(r, "id"), update)
	if err != nil {
		if errors.Is(err, docstore.ErrBadOperator) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "expense")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleDelete removes an expense record.
//
// DELETE /api/expenses/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "expense delete")
	defer cancel()

	doc, err := h.Expenses.FindByIDAndDelete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "expense")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
