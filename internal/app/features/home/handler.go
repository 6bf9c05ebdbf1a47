// internal/app/features/home/handler.go
package home

import (
	"net/http"

	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/features/admin"
	"github.com/dalemusser/studydesk/internal/app/features/dashboard"
	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/features/exam"
	"github.com/dalemusser/studydesk/internal/app/features/login"
	"github.com/dalemusser/studydesk/internal/app/features/modules"
	"github.com/dalemusser/studydesk/internal/app/features/profile"
	"github.com/dalemusser/studydesk/internal/app/features/shared"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// PageFunc builds the template name and data for one screen. It runs while
// the session is held.
type PageFunc func(r *http.Request, s *sessionhub.Session) (string, any)

// Handler renders the shell: exactly one screen, chosen by the session's
// controller.
type Handler struct {
	Hub    *sessionhub.Hub
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Pages  map[controller.View]PageFunc
}

func NewHandler(hub *sessionhub.Hub, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Hub:    hub,
		Log:    logger,
		ErrLog: errLog,
		Pages:  DefaultPages(),
	}
}

// DefaultPages maps every screen to its page builder.
func DefaultPages() map[controller.View]PageFunc {
	return map[controller.View]PageFunc{
		controller.ViewNone:          blankPage,
		controller.ViewAuth:          login.Page,
		controller.ViewDashboard:     dashboard.Page,
		controller.ViewModule:        modules.DetailPage,
		controller.ViewExam:          exam.Page,
		controller.ViewReview:        exam.ReviewPage,
		controller.ViewEditProfile:   profile.Page,
		controller.ViewStudentDetail: admin.StudentPage,
		controller.ViewEditModule:    modules.EditPage,
	}
}

func blankPage(r *http.Request, s *sessionhub.Session) (string, any) {
	return "shell_blank", struct{ viewdata.BaseVM }{viewdata.NewBaseVM(r, s, "")}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – the current screen                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	var (
		name string
		data any
	)
	err := shared.WithSession(h.Hub, r, func(s *sessionhub.Session) error {
		view := s.Ctl.Screen()
		page, ok := h.Pages[view]
		if !ok {
			h.Log.Warn("no page for view", zap.String("view", string(view)))
			page = blankPage
		}
		name, data = page(r, s)
		return nil
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "render shell failed", err, "Something went wrong. Please try again.", "/")
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	templates.Render(w, r, name, data)
}
