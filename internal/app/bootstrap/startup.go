// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/sevahub/sevahub/internal/app/store/identity"
	"github.com/sevahub/sevahub/internal/app/system/auth"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.SuperAdminEmail != "" {
		if err := ensureSuperAdmin(ctx, deps.Identity, appCfg.SuperAdminEmail, logger); err != nil {
			return fmt.Errorf("ensure superadmin: %w", err)
		}
	}
	return nil
}

// ensureSuperAdmin promotes the configured account to admin, creating it
// when it does not exist yet. A created account gets a random one-time
// password logged once at startup so the operator can sign in and change it.
func ensureSuperAdmin(ctx context.Context, ident *identity.Service, email string, logger *zap.Logger) error {
	u, err := ident.FindUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	if u != nil {
		if slices.Contains(u.Roles, "admin") {
			logger.Info("superadmin already present", zap.String("email", u.Email))
			return nil
		}
		set := append(append([]string(nil), u.Roles...), "admin")
		if _, err := ident.UpdateUser(ctx, u.ID, map[string]any{"roles": set, "status": "active"}); err != nil {
			return err
		}
		logger.Info("promoted existing user to superadmin", zap.String("email", u.Email))
		return nil
	}

	pw, err := randomPassword()
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(pw)
	if err != nil {
		return err
	}
	created, err := ident.CreateUser(ctx, identity.NewUser{
		Email:        email,
		FullName:     "Administrator",
		PasswordHash: hash,
		Status:       "active",
		Roles:        []string{"admin"},
	})
	if err != nil {
		return err
	}

	logger.Warn("created superadmin with a one-time password; change it after first login",
		zap.String("email", created.Email),
		zap.String("password", pw))
	return nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
