// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"

	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/features/shared"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"go.uber.org/zap"
)

// Handler serves the navigation intents that move between full-screen
// views. The dashboard page itself is built by Page for the shell.
type Handler struct {
	Hub    *sessionhub.Hub
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(hub *sessionhub.Hub, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Hub:    hub,
		Log:    logger,
		ErrLog: errLog,
	}
}

// HandleDashboard returns to the dashboard, abandoning any exam in
// progress and any open module draft.
// POST /nav/dashboard
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		if _, err := s.Ctl.Dispatch(r.Context(), controller.GoToDashboard{}); err != nil {
			return err
		}
		s.Exam.Reset()
		s.Draft = nil
		return nil
	})
}

// HandleReview opens the review of the last attempt. Without one nothing
// changes.
// POST /nav/review
func (h *Handler) HandleReview(w http.ResponseWriter, r *http.Request) {
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		_, err := s.Ctl.Dispatch(r.Context(), controller.GoToReview{})
		return err
	})
}

// HandleProfile opens the profile editor.
// POST /nav/profile
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	shared.Apply(w, r, h.Hub, h.ErrLog, func(s *sessionhub.Session) error {
		_, err := s.Ctl.Dispatch(r.Context(), controller.EditProfile{})
		return err
	})
}
