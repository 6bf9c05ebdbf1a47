// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	adminfeature "github.com/dalemusser/studydesk/internal/app/features/admin"
	dashboardfeature "github.com/dalemusser/studydesk/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/studydesk/internal/app/features/errors"
	examfeature "github.com/dalemusser/studydesk/internal/app/features/exam"
	healthfeature "github.com/dalemusser/studydesk/internal/app/features/health"
	heartbeatfeature "github.com/dalemusser/studydesk/internal/app/features/heartbeat"
	homefeature "github.com/dalemusser/studydesk/internal/app/features/home"
	loginfeature "github.com/dalemusser/studydesk/internal/app/features/login"
	modulesfeature "github.com/dalemusser/studydesk/internal/app/features/modules"
	profilefeature "github.com/dalemusser/studydesk/internal/app/features/profile"
	"github.com/dalemusser/studydesk/internal/app/system/auditlog"
	"github.com/dalemusser/studydesk/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// StudyDesk initializes the template engine, issues the session cookie,
// guards every form with CSRF tokens and mounts one router per feature.
// All intents redirect back to "/", which renders whatever view the
// session's controller is on.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()
	audit := auditlog.New(logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers; no session or CSRF.
	healthHandler := healthfeature.NewHandler(deps.Store, appCfg.StorageType, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.LoadSession)
		if !secure {
			r.Use(plaintextCSRF)
		}
		r.Use(csrf.Protect(csrfKey(appCfg),
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.ErrorHandler(http.HandlerFunc(errorsHandler.CSRFFailure)),
		))

		heartbeatHandler := heartbeatfeature.NewHandler(deps.Hub, logger)
		r.Mount("/api/heartbeat", heartbeatfeature.Routes(heartbeatHandler))

		loginHandler := loginfeature.NewHandler(deps.Hub, deps.LoginLimiter, audit, errLog, logger)
		r.Mount("/auth", loginfeature.Routes(loginHandler))

		dashboardHandler := dashboardfeature.NewHandler(deps.Hub, errLog, logger)
		r.Mount("/nav", dashboardfeature.Routes(dashboardHandler))

		adminHandler := adminfeature.NewHandler(deps.Hub, audit, errLog, logger)
		r.Mount("/admin", adminfeature.Routes(adminHandler))

		modulesHandler := modulesfeature.NewHandler(deps.Hub, deps.Content, deps.ContentLimiter, audit, errLog, logger)
		r.Mount("/modules", modulesfeature.Routes(modulesHandler))

		examHandler := examfeature.NewHandler(deps.Hub, deps.Content, deps.ContentLimiter, errLog, logger)
		r.Mount("/exam", examfeature.Routes(examHandler))

		profileHandler := profilefeature.NewHandler(deps.Hub, errLog, logger)
		r.Mount("/profile", profilefeature.Routes(profileHandler))

		homeHandler := homefeature.NewHandler(deps.Hub, errLog, logger)
		r.Mount("/", homefeature.Routes(homeHandler))
	})

	return r, nil
}

// csrfKey derives the 32-byte CSRF key from csrf_key, falling back to the
// session key.
func csrfKey(appCfg AppConfig) []byte {
	secret := appCfg.CSRFKey
	if secret == "" {
		secret = appCfg.SessionKey
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// plaintextCSRF tells gorilla/csrf the request arrived over plain HTTP so
// its Referer check does not demand https in local development.
func plaintextCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}
