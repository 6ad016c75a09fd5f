// Package health exposes the readiness endpoint.
package health

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/rel"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
)

// Handler holds the connections the health check probes.
type Handler struct {
	Rel    rel.Client
	Legacy *mongo.Client // nil when the legacy store is not configured
	Log    *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(relClient rel.Client, legacy *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{Rel: relClient, Legacy: legacy, Log: logger}
}

// Routes mounts GET /.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	return r
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Legacy   string `json:"legacy,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and {"status":"ok","database":"connected","legacy":"connected"}.
// On store failure: 503 with the failing component marked disconnected.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Ping(), h.Log, "health ping")
	defer cancel()

	resp := healthResponse{Status: "ok", Database: "connected"}
	status := http.StatusOK

	if err := h.Rel.Ping(ctx); err != nil {
		h.Log.Error("health-check: store ping failed", zap.Error(err))
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	if h.Legacy != nil {
		resp.Legacy = "connected"
		if err := h.Legacy.Ping(ctx, readpref.Primary()); err != nil {
			h.Log.Error("health-check: legacy ping failed", zap.Error(err))
			resp.Status = "error"
			resp.Legacy = "disconnected"
			if resp.Error == "" {
				resp.Error = err.Error()
			}
			status = http.StatusServiceUnavailable
		}
	}

	// Health is consumed by load balancers, which expect a flat body
	// rather than the API envelope.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
