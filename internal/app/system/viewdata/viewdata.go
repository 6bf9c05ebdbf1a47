// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the title bar and page titles.
const SiteName = "StudyDesk"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, s, "Page Title"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from the session's controller)
	IsLoggedIn bool
	IsAdmin    bool
	UserName   string
	Picture    template.URL // profile picture data URL, may be empty

	// Page context
	Title       string
	CurrentPath string

	// CSRF protection
	CSRFToken string // Token for form submission and htmx requests

	// One-shot messages queued by the previous intent.
	Notices []sessionhub.Notice
}

// NewBaseVM builds the BaseVM for a page rendered from session s.
// Queued notices are consumed, so call it once per render and only while
// holding the session (inside hub.Do).
func NewBaseVM(r *http.Request, s *sessionhub.Session, title string) BaseVM {
	vm := Minimal(r, title)
	st := s.Ctl.State()
	if u := st.CurrentUser; u != nil {
		vm.IsLoggedIn = true
		vm.IsAdmin = u.IsAdmin()
		vm.UserName = u.DisplayName()
		vm.Picture = PictureURL(u.ProfilePicture)
	}
	vm.Notices = s.TakeNotices()
	return vm
}

// Minimal builds a BaseVM without session context, for error pages.
func Minimal(r *http.Request, title string) BaseVM {
	return BaseVM{
		SiteName:    SiteName,
		Title:       title,
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
}

// PictureURL marks a stored profile picture as safe for an img src. Only
// inline image data URLs qualify; anything else yields an empty URL.
func PictureURL(dataURL string) template.URL {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return ""
	}
	return template.URL(dataURL)
}
