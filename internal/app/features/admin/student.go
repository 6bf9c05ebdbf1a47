// internal/app/features/admin/student.go
package admin

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/app/system/viewdata"
)

type attemptRow struct {
	Number int
	Date   string
	Score  string
}

type studentData struct {
	viewdata.BaseVM
	Email       string
	FullName    string
	Role        string
	BirthDate   string
	Nationality string
	Photo       template.URL
	Attempts    []attemptRow
}

// StudentPage builds the student detail view for the shell. The shell only
// calls it when a student is selected.
func StudentPage(r *http.Request, s *sessionhub.Session) (string, any) {
	st := s.Ctl.State()
	u := st.SelectedStudent

	data := studentData{
		BaseVM:      viewdata.NewBaseVM(r, s, u.FullName()),
		Email:       u.Email,
		FullName:    u.FullName(),
		Role:        u.Role,
		BirthDate:   u.BirthDate,
		Nationality: u.Nationality,
		Photo:       viewdata.PictureURL(u.ProfilePicture),
	}
	for i, at := range u.ExamHistory {
		row := attemptRow{Number: i + 1, Score: at.ScoreText(), Date: "Unknown"}
		if at.Date != nil {
			row.Date = at.Date.Format("Jan 2, 2006 15:04")
		}
		data.Attempts = append(data.Attempts, row)
	}
	return "student_detail", data
}
