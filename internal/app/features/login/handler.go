// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/features/shared"
	"github.com/dalemusser/studydesk/internal/app/system/auditlog"
	"github.com/dalemusser/studydesk/internal/app/system/formutil"
	"github.com/dalemusser/studydesk/internal/app/system/inputval"
	"github.com/dalemusser/studydesk/internal/app/system/limits"
	"github.com/dalemusser/studydesk/internal/app/system/ratelimit"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type Handler struct {
	Hub      *sessionhub.Hub
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	Limiter  *ratelimit.LoginLimiter
	AuditLog *auditlog.Logger
}

func NewHandler(hub *sessionhub.Hub, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Hub:      hub,
		Log:      logger,
		ErrLog:   errLog,
		Limiter:  limiter,
		AuditLog: audit,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type pageData struct {
	viewdata.BaseVM
	Register bool // registration form instead of sign-in
}

// Page builds the auth view for the shell.
func Page(r *http.Request, s *sessionhub.Session) (string, any) {
	title := "Sign in"
	if s.Register {
		title = "Create account"
	}
	return "auth", pageData{
		BaseVM:   viewdata.NewBaseVM(r, s, title),
		Register: s.Register,
	}
}

// credentials is validated before a registration is dispatched. bcrypt
// rejects passwords over 72 bytes.
type credentials struct {
	Email    string `validate:"required,email,max=254" label:"Email"`
	Password string `validate:"required,max=72" label:"Password"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/login                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(w, r, limits.MaxFormSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/")
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		if email == "" || password == "" {
			s.Flash("error", "Please enter your email and password.")
			return nil
		}
		if ok, msg := h.Limiter.Check(r, email); !ok {
			h.AuditLog.LoginRateLimited(r, email)
			s.Flash("error", msg)
			return nil
		}

		_, err := s.Ctl.Dispatch(r.Context(), controller.Authenticate{Email: email, Password: password})
		switch {
		case err == nil:
			h.Limiter.ResetEmail(email)
			h.AuditLog.LoginSuccess(r, email)
			resetViewState(s)
		case errors.Is(err, controller.ErrInvalidCredentials):
			h.AuditLog.LoginFailed(r, email, "invalid credentials")
			s.Flash("error", "Invalid email or password.")
		default:
			h.Log.Error("sign-in failed", zap.Error(err), zap.String("email", email))
			s.Flash("error", "Sign-in is unavailable right now. Please try again later.")
		}
		return nil
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/register                                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(w, r, limits.MaxFormSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/")
		return
	}
	creds := credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		if res := inputval.Validate(creds); res.HasErrors() {
			s.Flash("error", res.First())
			return nil
		}
		if ok, msg := h.Limiter.Check(r, creds.Email); !ok {
			h.AuditLog.LoginRateLimited(r, creds.Email)
			s.Flash("error", msg)
			return nil
		}

		_, err := s.Ctl.Dispatch(r.Context(), controller.Register{Email: creds.Email, Password: creds.Password})
		switch {
		case err == nil:
			role := ""
			if u := s.Ctl.State().CurrentUser; u != nil {
				role = u.Role
			}
			h.AuditLog.Registered(r, creds.Email, role)
			resetViewState(s)
			s.Flash("success", "Welcome! Tell us a little about yourself.")
		case errors.Is(err, controller.ErrEmailTaken):
			h.AuditLog.LoginFailed(r, creds.Email, "email taken")
			s.Flash("error", "An account with that email already exists.")
		case errors.Is(err, controller.ErrInvalidCredentials):
			s.Flash("error", "Please enter your email and password.")
		default:
			h.Log.Error("registration failed", zap.Error(err), zap.String("email", creds.Email))
			s.Flash("error", "Registration is unavailable right now. Please try again later.")
		}
		return nil
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/logout                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		email := ""
		if u := s.Ctl.State().CurrentUser; u != nil {
			email = u.Email
		}
		if _, err := s.Ctl.Dispatch(r.Context(), controller.Logout{}); err != nil {
			return err
		}
		h.AuditLog.Logout(r, email)
		resetViewState(s)
		return nil
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /auth/mode                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleMode switches the auth view between the sign-in and registration
// forms.
func (h *Handler) HandleMode(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(w, r, limits.MaxFormSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/")
		return
	}
	register := r.PostFormValue("mode") == "register"
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		s.Register = register
		return nil
	})
}

// resetViewState drops view-local state that belonged to the previous user.
func resetViewState(s *sessionhub.Session) {
	s.Register = false
	s.Exam.Reset()
	s.Draft = nil
}
