// internal/app/features/dashboard/page.go
package dashboard

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/studydesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/app/system/viewdata"
)

type moduleItem struct {
	ID          int64
	Title       string
	Description string
	Icon        string
}

type announcementItem struct {
	Content template.HTML
	Date    string
}

type pageData struct {
	viewdata.BaseVM

	Greeting string

	Latest *announcementItem // newest announcement, nil when none

	LastScore      string // "N/A" without an attempt in this session
	ModuleCount    int
	HasLastAttempt bool

	Modules []moduleItem
}

// Page builds the dashboard for the shell. Admins also get the admin panel,
// which the template loads separately.
func Page(r *http.Request, s *sessionhub.Session) (string, any) {
	st := s.Ctl.State()

	data := pageData{
		BaseVM:      viewdata.NewBaseVM(r, s, "Dashboard"),
		LastScore:   "N/A",
		ModuleCount: len(st.Modules),
	}
	if st.CurrentUser != nil {
		data.Greeting = st.CurrentUser.DisplayName()
	}
	if len(st.Announcements) > 0 {
		a := st.Announcements[0]
		data.Latest = &announcementItem{
			Content: htmlsanitize.PrepareForDisplay(a.Content),
			Date:    a.Date.Format("Jan 2, 2006"),
		}
	}
	if st.LastAttempt != nil {
		data.LastScore = st.LastAttempt.ScoreText()
		data.HasLastAttempt = true
	}
	for _, m := range st.Modules {
		data.Modules = append(data.Modules, moduleItem{
			ID:          m.ID,
			Title:       m.Title,
			Description: m.Description,
			Icon:        m.Icon(),
		})
	}
	return "dashboard", data
}
