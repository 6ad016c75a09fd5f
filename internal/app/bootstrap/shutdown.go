// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down DB connections and other resources.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.LegacyMongoClient != nil {
		logger.Info("disconnecting legacy MongoDB client")
		if err := deps.LegacyMongoClient.Disconnect(ctx); err != nil {
			logger.Error("legacy MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	if deps.Rel != nil {
		logger.Info("closing postgres pool")
		deps.Rel.Close()
	}
	return nil
}
