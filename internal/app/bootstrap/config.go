// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/studydesk/internal/app/system/contentgen"
	"github.com/dalemusser/studydesk/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	storageMongo  = "mongo"
	storageMemory = "memory"
)

// appConfigKeys defines the configuration keys for StudyDesk.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: STUDYDESK_MONGO_URI, STUDYDESK_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "storage_type", Default: storageMongo, Desc: "Storage backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "studydesk", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "studydesk-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 720h)"},
	{Name: "session_idle_timeout", Default: "30m", Desc: "Drop in-memory sessions unused for this long"},
	{Name: "session_sweep_interval", Default: "5m", Desc: "How often idle sessions are cleaned up"},
	{Name: "csrf_key", Default: "", Desc: "CSRF signing key (blank derives one from session_key)"},

	// Content Service
	{Name: "content_api_key", Default: "", Desc: "Content Service API key"},
	{Name: "content_base_url", Default: contentgen.DefaultBaseURL, Desc: "Content Service base URL"},
	{Name: "content_model", Default: contentgen.DefaultModel, Desc: "Content Service model name"},
	{Name: "content_use_adc", Default: false, Desc: "Authenticate with application default credentials when no API key is set"},
	{Name: "content_exam_questions", Default: contentgen.DefaultQuestions, Desc: "Questions per generated exam"},
	{Name: "content_timeout", Default: "60s", Desc: "Timeout for one Content Service call"},
	{Name: "content_rate_limit", Default: 10, Desc: "Content Service requests per session per minute"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' or 'log' (zap), or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' or 'log' (zap), or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, STUDYDESK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "STUDYDESK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StorageType:      appValues.String("storage_type"),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:           appValues.String("session_key"),
		SessionName:          appValues.String("session_name"),
		SessionDomain:        appValues.String("session_domain"),
		SessionMaxAge:        appValues.Duration("session_max_age", 30*24*time.Hour),
		SessionIdleTimeout:   appValues.Duration("session_idle_timeout", 30*time.Minute),
		SessionSweepInterval: appValues.Duration("session_sweep_interval", 5*time.Minute),
		CSRFKey:              appValues.String("csrf_key"),

		ContentAPIKey:        appValues.String("content_api_key"),
		ContentBaseURL:       appValues.String("content_base_url"),
		ContentModel:         appValues.String("content_model"),
		ContentUseADC:        appValues.Bool("content_use_adc"),
		ContentExamQuestions: appValues.Int("content_exam_questions"),
		ContentTimeout:       appValues.Duration("content_timeout", timeouts.DefaultContent),
		ContentRateLimit:     appValues.Int("content_rate_limit"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI is checked here so configuration errors surface before
// any connection attempt.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StorageType {
	case storageMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required when storage_type is %q", storageMongo)
		}
	case storageMemory:
		logger.Warn("storage_type=memory: data is kept in this process only and lost on restart")
	default:
		return fmt.Errorf("storage_type must be %q or %q, got %q", storageMongo, storageMemory, appCfg.StorageType)
	}

	if appCfg.SessionMaxAge <= 0 {
		return fmt.Errorf("session_max_age must be positive")
	}
	if appCfg.SessionIdleTimeout <= 0 || appCfg.SessionSweepInterval <= 0 {
		return fmt.Errorf("session_idle_timeout and session_sweep_interval must be positive")
	}
	if appCfg.ContentExamQuestions < 1 || appCfg.ContentExamQuestions > 50 {
		return fmt.Errorf("content_exam_questions must be between 1 and 50, got %d", appCfg.ContentExamQuestions)
	}
	if appCfg.ContentRateLimit < 1 {
		return fmt.Errorf("content_rate_limit must be at least 1")
	}
	for key, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_admin": appCfg.AuditLogAdmin} {
		switch v {
		case "all", "log", "off":
		default:
			return fmt.Errorf("%s must be 'all', 'log' or 'off', got %q", key, v)
		}
	}

	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("session_key must be set in production")
	}
	return nil
}
