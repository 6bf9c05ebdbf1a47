// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like ports, TLS,
// logging level and request body limits. AppConfig carries everything
// specific to StudyDesk: storage, sessions, the Content Service and audit
// logging.
type AppConfig struct {
	// Storage backend: "mongo" (default) or "memory" (single process, nothing persisted)
	StorageType string

	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: studydesk-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime; session records are kept at least this long

	// In-memory session housekeeping
	SessionIdleTimeout   time.Duration // live sessions unused this long are dropped from memory
	SessionSweepInterval time.Duration // how often the cleanup worker runs

	// CSRF key; derived from SessionKey when blank
	CSRFKey string

	// Content Service (exam questions and module summaries)
	ContentAPIKey        string
	ContentBaseURL       string
	ContentModel         string
	ContentUseADC        bool // use application default credentials when no API key is set
	ContentExamQuestions int
	ContentTimeout       time.Duration
	ContentRateLimit     int // generation requests per session per minute

	// Audit logging: "all" or "log" (zap), "off"
	AuditLogAuth  string
	AuditLogAdmin string
}

// UsesMongo reports whether the app stores data in MongoDB.
func (c AppConfig) UsesMongo() bool {
	return c.StorageType != storageMemory
}
