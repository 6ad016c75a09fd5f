// Package templates manages communication templates, which still live on
// the legacy document store.
package templates

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	templatestore "github.com/sevahub/sevahub/internal/app/store/templates"
	"github.com/sevahub/sevahub/internal/app/system/authz"
	"github.com/sevahub/sevahub/internal/app/system/respond"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
	"github.com/sevahub/sevahub/internal/domain/models"
)

// Store is the slice of the template store this feature uses.
type Store interface {
	Create(ctx context.Context, t models.CommunicationTemplate) (models.CommunicationTemplate, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.CommunicationTemplate, error)
	List(ctx context.Context) ([]models.CommunicationTemplate, error)
	Update(ctx context.Context, id primitive.ObjectID, t models.CommunicationTemplate) (*models.CommunicationTemplate, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Handler is the feature-level entry point for Templates.
type Handler struct {
	Templates Store
	Log       *zap.Logger
}

// NewHandler constructs a Templates handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{Templates: store, Log: logger}
}

// Routes mounts template routes. Template management is board tier and up.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.RequireRole("board"))

	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeGet)
	r.Post("/", h.HandleCreate)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/render", h.HandleRender)

	return r
}

func templateID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// ServeList returns every template.
//
// GET /api/templates
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "template list")
	defer cancel()

	out, err := h.Templates.List(ctx)
	if err != nil {
		h.Log.Error("template list failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	if out == nil {
		out = []models.CommunicationTemplate{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"templates": out})
}

// ServeGet returns one template.
//
// GET /api/templates/{id}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "malformed template id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "template get")
	defer cancel()

	t, err := h.Templates.GetByID(ctx, id)
	if err != nil {
		respond.Internal(w)
		return
	}
	if t == nil {
		respond.NotFound(w, "template")
		return
	}
	respond.JSON(w, http.StatusOK, t)
}

// HandleCreate stores a new template. HTML bodies are sanitized by the store.
//
// POST /api/templates
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var t models.CommunicationTemplate
	if err := respond.Decode(r, &t); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(t.Name) == "" {
		respond.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "template create")
	defer cancel()

	created, err := h.Templates.Create(ctx, t)
	if err != nil {
		if errors.Is(err, templatestore.ErrDuplicateName) {
			respond.Error(w, http.StatusConflict, "a template with that name already exists")
			return
		}
		h.Log.Error("template create failed", zap.Error(err))
		respond.Internal(w)
		return
	}
	respond.JSON(w, http.StatusCreated, created)
}

// HandleUpdate replaces a template's mutable fields.
//
// PUT /api/templates/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "malformed template id")
		return
	}
	var t models.CommunicationTemplate
	if err := respond.Decode(r, &t); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "template update")
	defer cancel()

	updated, err := h.Templates.Update(ctx, id, t)
	if err != nil {
		if errors.Is(err, templatestore.ErrDuplicateName) {
			respond.Error(w, http.StatusConflict, "a template with that name already exists")
			return
		}
		respond.Internal(w)
		return
	}
	if updated == nil {
		respond.NotFound(w, "template")
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

// HandleDelete removes a template.
//
// DELETE /api/templates/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "malformed template id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "template delete")
	defer cancel()

	deleted, err := h.Templates.Delete(ctx, id)
	if err != nil {
		respond.Internal(w)
		return
	}
	if !deleted {
		respond.NotFound(w, "template")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type renderRequest struct {
	Variables map[string]string `json:"variables"`
}

type renderResponse struct {
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
	HTMLBody string `json:"html_body,omitempty"`
}

// HandleRender substitutes variables into the template bodies. Unknown
// placeholders stay visible in the output.
//
// POST /api/templates/{id}/render
func (h *Handler) HandleRender(w http.ResponseWriter, r *http.Request) {
	id, ok := templateID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "malformed template id")
		return
	}
	var req renderRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "template render")
	defer cancel()

	t, err := h.Templates.GetByID(ctx, id)
	if err != nil {
		respond.Internal(w)
		return
	}
	if t == nil {
		respond.NotFound(w, "template")
		return
	}

	subject, text, html := templatestore.Render(*t, req.Variables)
	respond.JSON(w, http.StatusOK, renderResponse{Subject: subject, TextBody: text, HTMLBody: html})
}
