// internal/app/features/admin/handler.go
package admin

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/features/shared"
	"github.com/dalemusser/studydesk/internal/app/system/auditlog"
	"github.com/dalemusser/studydesk/internal/app/system/formutil"
	"github.com/dalemusser/studydesk/internal/app/system/inputval"
	"github.com/dalemusser/studydesk/internal/app/system/limits"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the admin panel and its intents. Authorization is the
// controller's: commands from non-admins come back Denied and change nothing.
type Handler struct {
	Hub      *sessionhub.Hub
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(hub *sessionhub.Hub, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Hub:      hub,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

// ServePanel renders the admin panel snippet loaded by the dashboard.
// Non-admins get an empty response.
// GET /admin/panel
func (h *Handler) ServePanel(w http.ResponseWriter, r *http.Request) {
	var (
		data panelData
		ok   bool
	)
	err := shared.WithSession(h.Hub, r, func(s *sessionhub.Session) error {
		data, ok = buildPanel(r, s.Ctl.State())
		return nil
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin panel failed", err, "Could not load the admin tools.", "/")
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	templates.RenderSnippet(w, "admin_panel", data)
}

// HandleOpenStudent shows one student's profile and exam history.
// POST /admin/students/open
func (h *Handler) HandleOpenStudent(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(w, r, limits.MaxFormSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/")
		return
	}
	email := r.PostFormValue("email")
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		out, err := s.Ctl.Dispatch(r.Context(), controller.SelectStudent{Email: email})
		if err == nil && out == controller.NotFound {
			s.Flash("error", "That user no longer exists.")
		}
		return err
	})
}

// HandlePromote grants the admin role. Only the primary admin may promote.
// POST /admin/users/promote
func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(w, r, limits.MaxFormSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/")
		return
	}
	email := r.PostFormValue("email")
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		out, err := s.Ctl.Dispatch(r.Context(), controller.PromoteUser{Email: email})
		if err != nil {
			return err
		}
		h.AuditLog.Admin(r, auditlog.EventUserPromoted, actor(s), out.String(), map[string]string{"email": email})
		switch out {
		case controller.Applied:
			s.Flash("success", email+" is now an administrator.")
		case controller.NotFound:
			s.Flash("error", "That user no longer exists.")
		default:
			shared.FlashRefused(s, out, "The user list is over its storage limit.")
		}
		return nil
	})
}

type announcementForm struct {
	Content string `validate:"notblank,max=2000" label:"Announcement"`
}

// HandlePostAnnouncement publishes a new announcement. The text is stored
// as entered and sanitized when displayed.
// POST /admin/announcements
func (h *Handler) HandlePostAnnouncement(w http.ResponseWriter, r *http.Request) {
	if err := formutil.Parse(w, r, limits.MaxFormSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/")
		return
	}
	form := announcementForm{Content: strings.TrimSpace(r.PostFormValue("content"))}
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		if res := inputval.Validate(form); res.HasErrors() {
			s.Flash("error", res.First())
			return nil
		}
		out, err := s.Ctl.Dispatch(r.Context(), controller.SaveAnnouncement{Content: form.Content})
		if err != nil {
			return err
		}
		h.AuditLog.Admin(r, auditlog.EventAnnouncementPosted, actor(s), out.String(), nil)
		if out == controller.Applied {
			s.Flash("success", "Announcement posted.")
		} else {
			shared.FlashRefused(s, out, "The announcements are over their storage limit. Delete old ones first.")
		}
		return nil
	})
}

// HandleDeleteAnnouncement removes an announcement.
// POST /admin/announcements/{id}/delete
func (h *Handler) HandleDeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		out, err := s.Ctl.Dispatch(r.Context(), controller.DeleteAnnouncement{ID: id})
		if err != nil {
			return err
		}
		h.AuditLog.Admin(r, auditlog.EventAnnouncementDelete, actor(s), out.String(), map[string]string{"id": id})
		shared.FlashRefused(s, out, "The announcements are over their storage limit.")
		return nil
	})
}

func actor(s *sessionhub.Session) string {
	if u := s.Ctl.State().CurrentUser; u != nil {
		return u.Email
	}
	return ""
}
