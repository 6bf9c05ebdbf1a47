// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/studydesk/internal/app/store/kv"
	"github.com/dalemusser/studydesk/internal/app/system/contentgen"
	"github.com/dalemusser/studydesk/internal/app/system/indexes"
	"github.com/dalemusser/studydesk/internal/app/system/ratelimit"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/app/system/timeouts"
	"github.com/dalemusser/studydesk/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects the store and builds the back-end services that sit on
// it: the session hub, the Content Service client, the session cleanup
// worker and the rate limiters.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	var deps DBDeps

	if appCfg.UsesMongo() {
		client, err := connectMongo(ctx, appCfg, logger)
		if err != nil {
			return DBDeps{}, err
		}
		deps.StudyDeskMongoClient = client
		deps.StudyDeskMongoDatabase = client.Database(appCfg.MongoDatabase)
		deps.Store = kv.NewMongo(deps.StudyDeskMongoDatabase)
	} else {
		deps.Store = kv.NewMemory()
	}

	deps.Hub = sessionhub.New(deps.Store, logger)

	content, err := contentgen.New(ctx, contentgen.Config{
		APIKey:    appCfg.ContentAPIKey,
		BaseURL:   appCfg.ContentBaseURL,
		Model:     appCfg.ContentModel,
		UseADC:    appCfg.ContentUseADC,
		Questions: appCfg.ContentExamQuestions,
	}, logger)
	if err != nil {
		disconnect(deps, logger)
		return DBDeps{}, fmt.Errorf("content service: %w", err)
	}
	deps.Content = content

	sweeper, _ := deps.Store.(kv.Sweeper)
	deps.Cleanup = workers.NewSessionCleanup(deps.Hub, sweeper, logger,
		appCfg.SessionSweepInterval, appCfg.SessionIdleTimeout, appCfg.SessionMaxAge)
	deps.ContentLimiter = ratelimit.New(appCfg.ContentRateLimit, time.Minute)
	deps.LoginLimiter = ratelimit.NewLoginLimiter()

	return deps, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("MongoDB connect failed", zap.Error(err))
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("MongoDB ping failed", zap.Error(err))
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return client, nil
}

// EnsureSchema sets up indexes on the kv collection. Nothing to do for the
// memory store.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.StudyDeskMongoDatabase == nil {
		return nil
	}
	if err := indexes.EnsureAll(ctx, deps.StudyDeskMongoDatabase, logger); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	return nil
}
