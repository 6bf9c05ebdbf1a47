// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/studydesk/internal/app/resources"
	"github.com/dalemusser/studydesk/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: shared
// templates, timeouts and the session cleanup worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	timeouts.Configure(timeouts.Config{Content: appCfg.ContentTimeout})

	if deps.Cleanup != nil {
		deps.Cleanup.Start()
	}

	logger.Info("studydesk started",
		zap.String("storage", appCfg.StorageType),
		zap.Bool("content_configured", appCfg.ContentAPIKey != "" || appCfg.ContentUseADC))
	return nil
}
