// Package applications manages membership applications: submission, review,
// approval into a user account, and soft deletion.
package applications

import (
	"context"

	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/docstore"
	"github.com/sevahub/sevahub/internal/app/store/identity"
	"github.com/sevahub/sevahub/internal/app/system/mailer"
	"github.com/sevahub/sevahub/internal/domain/models"
)

// Recorder appends activity records. A nil Recorder disables logging.
type Recorder interface {
	Record(ctx context.Context, rec models.ActivityRecord) error
}

// Handler is the feature-level entry point for Applications.
type Handler struct {
	Applications *docstore.Collection
	Communities  *docstore.Collection
	Ident        *identity.Service
	Mail         *mailer.Mailer
	Activity     Recorder
	BaseURL      string
	SiteName     string
	Log          *zap.Logger
}

// NewHandler constructs an Applications handler.
func NewHandler(reg *docstore.Registry, ident *identity.Service, mail *mailer.Mailer, act Recorder, baseURL, siteName string, logger *zap.Logger) *Handler {
	return &Handler{
		Applications: reg.Applications,
		Communities:  reg.Communities,
		Ident:        ident,
		Mail:         mail,
		Activity:     act,
		BaseURL:      baseURL,
		SiteName:     siteName,
		Log:          logger,
	}
}
