// Package members exposes CRUD over devotee member records.
package members

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

// Handler is the feature-level entry point for Members.
type Handler struct {
	Members *docstore.Collection
	Log     *zap.Logger
}

// NewHandler constructs a Members handler.
func NewHandler(reg *docstore.Registry, logger *zap.Logger) *Handler {
	return &Handler{Members: reg.Members, Log: logger}
}

// Routes mounts member routes. Reads are open to authenticated users;
// writes need the community_lead tier and up.
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

// ServeList returns members, optionally scoped to one community.
//
// GET /api/members?community_id=&status=&page=&limit=
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)
	filter := docstore.Document{}
	if cid := query.Get(r, "community_id"); cid != "" {
		filter["community_id"] = cid
	}
	if s := normalize.Status(query.Get(r, "status")); s != "" {
		filter["status"] = s
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "member list")
	defer cancel()

	rows, err := h.Members.Find(filter).
		Sort("created_at", -1).
		Skip(p.Skip()).
		Limit(p.FetchLimit()).
		All(ctx)
	if err != nil {
		h.Log.Error("member list failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	meta := paging.Trim(&rows, p)
	if rows == nil {
		rows = []docstore.Document{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"members": rows, "meta": meta})
}

// ServeGet returns one member record.
//
// GET /api/members/{id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "member get")
	defer cancel()

	doc, err := h.Members.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "member")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleCreate stores a new member record.
//
// POST /api/members
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "member create")
	defer cancel()

	saved, err := h.Members.Save(ctx, doc)
	if err != nil {
		h.Log.Error("member create failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	respond.JSON(w, http.StatusCreated, saved)
}

// HandleUpdate applies a partial update to a member record.
//
// PUT /api/members/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var update docstore.Document
	if err := respond.Decode(r, &update); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if email, ok := update["email"].(string); ok {
		update["email"] = normalize.Email(email)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "member update")
	defer cancel()

	doc, err := h.Members.FindByIDAndUpdate(ctx, chi.URLParam(r, "id"), update)
	if err != nil {
		if errors.Is(err, docstore.ErrBadOperator) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "member")
		return
	}
	respond.JSON(w, http.StatusOK, doc)
}

// HandleDelete removes a member record.
//
// DELETE /api/members/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "member delete")
	defer cancel()

	doc, err := h.Members.FindByIDAndDelete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respond.Internal(w)
		return
	}
	if doc == nil {
		respond.NotFound(w, "member")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
