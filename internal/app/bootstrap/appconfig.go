// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration: HTTP ports, TLS, logging
// level, and the like belong to WAFFLE's CoreConfig.
type AppConfig struct {
	// Primary relational store
	PostgresDSN string // Postgres connection string (e.g., postgres://localhost:5432/sevahub)

	// Legacy document store (communication templates, activity log).
	// Blank URI disables the legacy layer entirely.
	LegacyMongoURI      string // MongoDB connection string (e.g., mongodb://localhost:27017)
	LegacyMongoDatabase string // Database name within MongoDB

	// Token auth configuration
	JWTSecret string        // HMAC signing key for bearer tokens (must be strong in production)
	TokenTTL  time.Duration // Lifetime of issued tokens

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (blank suppresses outbound mail)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username (empty for Mailpit)
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@sevahub.org)

	// Site identity used in outbound mail and API responses
	SiteName string // Display name (e.g., SevaHub)
	BaseURL  string // e.g., "https://sevahub.org" or "http://localhost:3000"

	// SuperAdmin bootstrap
	SuperAdminEmail string // Email of the admin user promoted/created on startup
}
