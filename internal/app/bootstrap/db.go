// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/activity"
	"github.com/sevahub/sevahub/internal/app/store/docstore"
	"github.com/sevahub/sevahub/internal/app/store/identity"
	"github.com/sevahub/sevahub/internal/app/store/rel"
	templatestore "github.com/sevahub/sevahub/internal/app/store/templates"
	userstore "github.com/sevahub/sevahub/internal/app/store/users"
	"github.com/sevahub/sevahub/internal/app/system/auth"
	"github.com/sevahub/sevahub/internal/app/system/mailer"
	"github.com/sevahub/sevahub/internal/app/system/timeouts"
)

// ConnectDB establishes the backend connections and builds the shared
// service layer on top of them: the Postgres pool feeds both the typed
// users store and the document collections, identity resolution wraps the
// users store, and token auth wraps identity. The legacy Mongo layer is
// connected only when a URI is configured.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	pg, err := rel.ConnectPG(ctx, appCfg.PostgresDSN, logger)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect postgres: %w", err)
	}

	users := userstore.New(pg.Pool())
	ident := identity.New(users, logger)

	am, err := auth.NewManager(appCfg.JWTSecret, appCfg.TokenTTL, ident, logger)
	if err != nil {
		pg.Close()
		return DBDeps{}, err
	}

	deps := DBDeps{
		Rel:      pg,
		Users:    users,
		Registry: docstore.NewRegistry(pg),
		Identity: ident,
		Auth:     am,
		Mail: mailer.New(mailer.Config{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			User:     appCfg.MailSMTPUser,
			Pass:     appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			SiteName: appCfg.SiteName,
		}, logger),
	}

	if appCfg.LegacyMongoURI == "" {
		logger.Info("legacy document store disabled (no URI configured)")
		return deps, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.LegacyMongoURI))
	if err != nil {
		pg.Close()
		return DBDeps{}, fmt.Errorf("connect legacy mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		pg.Close()
		return DBDeps{}, fmt.Errorf("ping legacy mongo: %w", err)
	}

	db := client.Database(appCfg.LegacyMongoDatabase)
	deps.LegacyMongoClient = client
	deps.LegacyMongoDatabase = db
	deps.Activity = activity.New(db)
	deps.Templates = templatestore.New(db)

	logger.Info("legacy document store connected",
		zap.String("database", appCfg.LegacyMongoDatabase))
	return deps, nil
}

// EnsureSchema creates the relational tables and legacy indexes if needed.
// Every statement is idempotent, so repeated startups are safe.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := deps.Users.EnsureTable(ctx); err != nil {
		return err
	}
	for _, table := range docstore.Tables() {
		if err := deps.Rel.EnsureTable(ctx, table); err != nil {
			return err
		}
	}

	if deps.Activity != nil {
		if err := deps.Activity.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure activity indexes: %w", err)
		}
	}
	if deps.Templates != nil {
		if err := deps.Templates.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure template indexes: %w", err)
		}
	}

	logger.Info("schema ensured", zap.Int("doc_tables", len(docstore.Tables())))
	return nil
}
