// internal/app/features/admin/panel.go
package admin

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/system/htmlsanitize"
	"github.com/gorilla/csrf"
)

type userRow struct {
	Email      string
	Name       string
	Role       string
	IsAdmin    bool
	CanPromote bool
	Attempts   int
}

type moduleRow struct {
	ID        int64
	Title     string
	Materials int
}

type announcementRow struct {
	ID      string
	Content template.HTML
	Date    string
}

type panelData struct {
	CSRFToken     string
	Users         []userRow
	Modules       []moduleRow
	Announcements []announcementRow
}

// buildPanel reports false for anyone but an admin. The promote button is
// offered only to the primary admin, and only for non-admins.
func buildPanel(r *http.Request, st controller.State) (panelData, bool) {
	if st.CurrentUser == nil || !st.CurrentUser.IsAdmin() {
		return panelData{}, false
	}

	data := panelData{CSRFToken: csrf.Token(r)}
	for _, u := range st.AllUsers {
		data.Users = append(data.Users, userRow{
			Email:      u.Email,
			Name:       u.FullName(),
			Role:       u.Role,
			IsAdmin:    u.IsAdmin(),
			CanPromote: st.IsPrimaryAdmin && !u.IsAdmin(),
			Attempts:   len(u.ExamHistory),
		})
	}
	for _, m := range st.Modules {
		data.Modules = append(data.Modules, moduleRow{
			ID:        m.ID,
			Title:     m.Title,
			Materials: len(m.Materials),
		})
	}
	for _, a := range st.Announcements {
		data.Announcements = append(data.Announcements, announcementRow{
			ID:      a.ID,
			Content: htmlsanitize.PrepareForDisplay(a.Content),
			Date:    a.Date.Format("Jan 2, 2006 15:04"),
		})
	}
	return data, true
}
