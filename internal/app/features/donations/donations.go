// Package donations exposes CRUD over donation records.
//
// Listing supports multi-status filtering: ?status=pledged,received expands
// to an $in condition on the adapter layer.
package donations

import (
	"context"
	"errors"
	"net/http"
	"strings"

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

// Handler is the feature-level entry point for Donations.
type Handler struct {
	Donations *docstore.Collection
	Activity  Recorder
	Log       *zap.Logger
}

// NewHandler constructs a Donations handler.
func NewHandler(reg *docstore.Registry, act Recorder, logger *zap.Logger) *Handler {
	return &Handler{Donations: reg.Donations, Activity: act, Log: logger}
}

// Routes mounts donation routes. Reads and writes are finance_team tier;
// recording a donation is open to volunteers collecting at events.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.With(authz.RequireRole("volunteer")).Post("/", h.HandleCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(authz.RequireRole("finance_team"))
		pr.Get("/", h.ServeList)
		pr.Get("/{id}", h.ServeGet)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}

// ServeList returns donations. The status parameter accepts a comma list;
// more than one value becomes an $in filter.
//
// GET /api/donations?status=pledged,received&community_id=&page=&limit=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)
	filter := docstore.Document{}
	if cid := query.Get(r, "community_id"); cid != "" {
		filter["community_id"] = cid
	}
	if raw := query.Get(r, "status"); raw != "" {
		var statuses []any
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, s)
			}
		}
		switch len(statuses) {
		case 0:
		case 1:
			filter["status"] = statuses[0]
		default:
			filter["status"] = docstore.Document{"$in": statuses}
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "donation list")
	defer cancel()

	rows, err := h.Donations.Find(filter).
		Sort("created_at", -1).
		Skip(p.Skip()).
		Limit(p.FetchLimit()).
		All(ctx)
	if err != nil {
		if errors.Is(err, docstore.ErrBadOperator) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error("donation list failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	meta := paging.Trim(&rows, p)
	if rows == nil {
		rows = []docstore.Document{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"donations": rows, "meta": meta})
}

// ServeGet returns one donation.
//
// GET /api/donations/{id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "donation get")
	defer cancel()

	doc, err := h.Donations.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "donation")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleCreate stores a new donation.
//
// POST /api/donations
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
	if _, ok := doc["status"]; !ok {
		doc["status"] = "pledged"
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "donation create")
	defer cancel()

	saved, err := h.Donations.Save(ctx, doc)
	if err != nil {
		h.Log.Error("donation create failed", zap.Error(err))
		respond.Internal(w)
		return
	}

	if h.Activity != nil {
		_, uid, _ := authz.UserCtx(r)
		id, _ := saved["id"].(string)
		if err := h.Activity.Record(ctx, models.ActivityRecord{
			UserID: uid, Action: activity.ActionDonationCreated, Entity: "donation", EntityID: id,
		}); err != nil {
			h.Log.Warn("activity record failed", zap.Error(err))
		}
	}
	respond.JSON(w, http.StatusCreated, saved)
}

// HandleUpdate applies a partial update to a donation, e.g. moving it from
// pledged to received.
//
// PUT /api/donations/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var update docstore.Document
	if err := respond.Decode(r, &update); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "donation update")
	defer cancel()

	doc, err := h.Donations.FindByIDAndUpdate(ctx, chi.URLParam(r, "id"), update)
	if err != nil {
		if errors.Is(err, docstore.ErrBadOperator) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "donation")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleDelete removes a donation record.
//
// DELETE /api/donations/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "donation delete")
	defer cancel()

	doc, err := h.Donations.FindByIDAndDelete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "donation")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
