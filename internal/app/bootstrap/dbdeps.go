// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sevahub/sevahub/internal/app/store/activity"
	"github.com/sevahub/sevahub/internal/app/store/docstore"
	"github.com/sevahub/sevahub/internal/app/store/identity"
	"github.com/sevahub/sevahub/internal/app/store/rel"
	templatestore "github.com/sevahub/sevahub/internal/app/store/templates"
	userstore "github.com/sevahub/sevahub/internal/app/store/users"
	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/app/system/mailer"
)

// DBDeps holds database/back-end dependencies for the app.
// Extend this struct as your app evolves.
type DBDeps struct {
	// Primary relational store
	Rel      *rel.PG
	Users    *userstore.Store
	Registry *docstore.Registry

	// Identity resolution and token auth built over the users store
	Identity *identity.Service
	Auth     *auth.Manager

	// Outbound mail
	Mail *mailer.Mailer

	// Legacy document store; nil fields mean the layer is disabled
	LegacyMongoClient   *mongo.Client
	LegacyMongoDatabase *mongo.Database
	Activity            *activity.Store
	Templates           *templatestore.Store
}
