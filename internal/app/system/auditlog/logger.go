// internal/app/system/auditlog/logger.go
package auditlog

import (
	"net/http"

	"github.com/dalemusser/studydesk/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Event categories.
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Event types.
const (
	EventLoginSuccess       = "login_success"
	EventLoginFailed        = "login_failed"
	EventLoginRateLimited   = "login_rate_limited"
	EventRegistered         = "user_registered"
	EventLogout             = "logout"
	EventUserPromoted       = "user_promoted"
	EventModuleSaved        = "module_saved"
	EventModuleDeleted      = "module_deleted"
	EventAnnouncementPosted = "announcement_posted"
	EventAnnouncementDelete = "announcement_deleted"
)

// Event is one audit record.
type Event struct {
	Category      string
	EventType     string
	Actor         string // email of the signed-in user, or the attempted email
	IP            string
	Success       bool
	FailureReason string
	Details       map[string]string
}

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (sign-in, registration, sign-out).
	// Values: "all" or "log" (zap), "off" (disabled)
	Auth string
	// Admin controls logging for admin actions (promotion, modules, announcements).
	// Values: "all" or "log" (zap), "off" (disabled)
	Admin string
}

// Logger writes audit events as structured log entries.
type Logger struct {
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(zapLog *zap.Logger, config Config) *Logger {
	return &Logger{zapLog: zapLog, config: config}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(event Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case CategoryAuth:
		setting = l.config.Auth
	case CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "off" {
		return
	}

	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in.
func (l *Logger) LoginSuccess(r *http.Request, email string) {
	l.Log(Event{
		Category:  CategoryAuth,
		EventType: EventLoginSuccess,
		Actor:     email,
		IP:        ratelimit.ClientIP(r),
		Success:   true,
	})
}

// LoginFailed logs a rejected sign-in or registration.
func (l *Logger) LoginFailed(r *http.Request, email, reason string) {
	l.Log(Event{
		Category:      CategoryAuth,
		EventType:     EventLoginFailed,
		Actor:         email,
		IP:            ratelimit.ClientIP(r),
		FailureReason: reason,
	})
}

// LoginRateLimited logs an attempt refused by the login limiter.
func (l *Logger) LoginRateLimited(r *http.Request, email string) {
	l.Log(Event{
		Category:      CategoryAuth,
		EventType:     EventLoginRateLimited,
		Actor:         email,
		IP:            ratelimit.ClientIP(r),
		FailureReason: "rate limited",
	})
}

// Registered logs a new account.
func (l *Logger) Registered(r *http.Request, email, role string) {
	l.Log(Event{
		Category:  CategoryAuth,
		EventType: EventRegistered,
		Actor:     email,
		IP:        ratelimit.ClientIP(r),
		Success:   true,
		Details:   map[string]string{"role": role},
	})
}

// Logout logs a sign-out.
func (l *Logger) Logout(r *http.Request, email string) {
	l.Log(Event{
		Category:  CategoryAuth,
		EventType: EventLogout,
		Actor:     email,
		IP:        ratelimit.ClientIP(r),
		Success:   true,
	})
}

// --- Admin Events ---

// Admin logs an admin action by actor. outcome is the controller's outcome
// name; anything other than "applied" is recorded as unsuccessful.
func (l *Logger) Admin(r *http.Request, eventType, actor, outcome string, details map[string]string) {
	ev := Event{
		Category:  CategoryAdmin,
		EventType: eventType,
		Actor:     actor,
		IP:        ratelimit.ClientIP(r),
		Success:   outcome == "applied",
		Details:   details,
	}
	if !ev.Success {
		ev.FailureReason = outcome
	}
	l.Log(ev)
}
