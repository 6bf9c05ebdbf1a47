// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background workers and disconnects MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Cleanup != nil {
		deps.Cleanup.Stop()
	}
	if deps.ContentLimiter != nil {
		deps.ContentLimiter.Stop()
	}
	if deps.LoginLimiter != nil {
		deps.LoginLimiter.Stop()
	}

	if deps.StudyDeskMongoClient != nil {
		logger.Info("disconnecting StudyDesk MongoDB client")
		if err := deps.StudyDeskMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}

// disconnect releases a half-built DBDeps after a later ConnectDB step fails.
func disconnect(deps DBDeps, logger *zap.Logger) {
	if deps.StudyDeskMongoClient == nil {
		return
	}
	if err := deps.StudyDeskMongoClient.Disconnect(context.Background()); err != nil {
		logger.Warn("MongoDB disconnect failed", zap.Error(err))
	}
}
