// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applicationsfeature "github.com/sevahub/sevahub/internal/app/features/applications"
	communitiesfeature "github.com/sevahub/sevahub/internal/app/features/communities"
	donationsfeature "github.com/sevahub/sevahub/internal/app/features/donations"
	eventsfeature "github.com/sevahub/sevahub/internal/app/features/events"
	expensesfeature "github.com/sevahub/sevahub/internal/app/features/expenses"
	healthfeature "github.com/sevahub/sevahub/internal/app/features/health"
	membersfeature "github.com/sevahub/sevahub/internal/app/features/members"
	mobilefeature "github.com/sevahub/sevahub/internal/app/features/mobile"
	tasksfeature "github.com/sevahub/sevahub/internal/app/features/tasks"
	templatesfeature "github.com/sevahub/sevahub/internal/app/features/templates"
	usersfeature "github.com/sevahub/sevahub/internal/app/features/users"
	volunteersfeature "github.com/sevahub/sevahub/internal/app/features/volunteers"
	"github.com/sevahub/sevahub/internal/app/system/auth"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The API surface is JSON throughout:
// /health for load balancers, and everything else under /api behind the
// bearer-token middleware. Each feature router applies its own role gates.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// The activity log lives on the legacy layer and may be absent. Handing
	// a nil *Store straight to the per-feature Recorder interfaces would
	// produce a non-nil interface around a nil pointer, so each wiring gets
	// its own guarded assignment.
	var userRec usersfeature.Recorder
	var appRec applicationsfeature.Recorder
	var donRec donationsfeature.Recorder
	var expRec expensesfeature.Recorder
	if deps.Activity != nil {
		userRec = deps.Activity
		appRec = deps.Activity
		donRec = deps.Activity
		expRec = deps.Activity
	}

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.Rel, deps.LegacyMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	api := chi.NewRouter()

	// Global auth middleware: resolves bearer-token claims to a fresh user
	// record on each request, so role changes and disabled accounts take
	// effect immediately.
	api.Use(deps.Auth.Authenticate)

	usersHandler := usersfeature.NewHandler(
		deps.Identity, deps.Users, deps.Auth, deps.Mail, userRec,
		appCfg.BaseURL, appCfg.SiteName, logger)
	api.Mount("/users", usersfeature.Routes(usersHandler))

	communitiesHandler := communitiesfeature.NewHandler(deps.Registry, logger)
	api.Mount("/communities", communitiesfeature.Routes(communitiesHandler))

	membersHandler := membersfeature.NewHandler(deps.Registry, logger)
	api.Mount("/members", membersfeature.Routes(membersHandler))

	volunteersHandler := volunteersfeature.NewHandler(deps.Registry, logger)
	api.Mount("/volunteers", volunteersfeature.Routes(volunteersHandler))

	donationsHandler := donationsfeature.NewHandler(deps.Registry, donRec, logger)
	api.Mount("/donations", donationsfeature.Routes(donationsHandler))

	expensesHandler := expensesfeature.NewHandler(deps.Registry, expRec, logger)
	api.Mount("/expenses", expensesfeature.Routes(expensesHandler))

	eventsHandler := eventsfeature.NewHandler(deps.Registry, logger)
	api.Mount("/events", eventsfeature.Routes(eventsHandler))

	tasksHandler := tasksfeature.NewHandler(deps.Registry, logger)
	api.Mount("/tasks", tasksfeature.Routes(tasksHandler))

	applicationsHandler := applicationsfeature.NewHandler(
		deps.Registry, deps.Identity, deps.Mail, appRec,
		appCfg.BaseURL, appCfg.SiteName, logger)
	api.Mount("/applications", applicationsfeature.Routes(applicationsHandler))

	// Communication templates require the legacy document store.
	if deps.Templates != nil {
		templatesHandler := templatesfeature.NewHandler(deps.Templates, logger)
		api.Mount("/templates", templatesfeature.Routes(templatesHandler))
	}

	mobileHandler := mobilefeature.NewHandler(deps.Registry, logger)
	api.With(auth.RequireUser).Mount("/mobile", mobilefeature.Routes(mobileHandler))

	r.Mount("/api", api)

	return r, nil
}
