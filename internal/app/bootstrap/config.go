// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for SevaHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: postgres_dsn, jwt_secret, etc.
//   - Environment variables: SEVAHUB_POSTGRES_DSN, SEVAHUB_JWT_SECRET, etc.
//   - Command-line flags: --postgres_dsn, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "postgres_dsn", Default: "postgres://localhost:5432/sevahub?sslmode=disable", Desc: "Postgres connection string"},

	// Legacy document store (blank URI disables the layer)
	{Name: "legacy_mongo_uri", Default: "mongodb://localhost:27017", Desc: "Legacy MongoDB connection URI (blank disables)"},
	{Name: "legacy_mongo_database", Default: "sevahub", Desc: "Legacy MongoDB database name"},

	// Token auth
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "Bearer token signing key (must be strong in production)"},
	{Name: "token_ttl", Default: "72h", Desc: "Bearer token lifetime (e.g., 72h, 30m)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host (blank suppresses outbound mail)"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@sevahub.org", Desc: "From email address"},

	// Site identity
	{Name: "site_name", Default: "SevaHub", Desc: "Site display name used in mail and responses"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for email links"},

	// SuperAdmin bootstrap
	{Name: "superadmin_email", Default: "", Desc: "Email of the admin user (promotes/creates on startup)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SEVAHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		PostgresDSN: appValues.String("postgres_dsn"),

		LegacyMongoURI:      appValues.String("legacy_mongo_uri"),
		LegacyMongoDatabase: appValues.String("legacy_mongo_database"),

		JWTSecret: appValues.String("jwt_secret"),
		TokenTTL:  appValues.Duration("token_ttl", 72*time.Hour),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),

		SiteName: appValues.String("site_name"),
		BaseURL:  appValues.String("base_url"),

		SuperAdminEmail: appValues.String("superadmin_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.PostgresDSN == "" {
		return fmt.Errorf("postgres_dsn is required")
	}

	// The legacy layer is optional; validate the URI only when it is set so
	// configuration mistakes are caught before connecting.
	if appCfg.LegacyMongoURI != "" {
		if err := wafflemongo.ValidateURI(appCfg.LegacyMongoURI); err != nil {
			logger.Error("invalid legacy MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid legacy MongoDB URI: %w", err)
		}
		if appCfg.LegacyMongoDatabase == "" {
			return fmt.Errorf("legacy_mongo_database is required when legacy_mongo_uri is set")
		}
	}

	if coreCfg.Env == "prod" && appCfg.JWTSecret == devJWTSecret {
		return fmt.Errorf("jwt_secret must be set to a strong value in production")
	}

	return nil
}
