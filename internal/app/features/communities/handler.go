// Package communities manages temple communities and their member rosters.
package communities

import (
	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/docstore"
)

// Handler is the feature-level entry point for Communities.
type Handler struct {
	Communities *docstore.Collection
	Members     *docstore.Collection
	Log         *zap.Logger
}

// NewHandler constructs a Communities handler over the entity registry.
func NewHandler(reg *docstore.Registry, logger *zap.Logger) *Handler {
	return &Handler{
		Communities: reg.Communities,
		Members:     reg.Members,
		Log:         logger,
	}
}
