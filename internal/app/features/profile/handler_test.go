package profile_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/features/profile"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/domain/models"
	"github.com/dalemusser/studydesk/internal/testutil"
	"go.uber.org/zap"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newTestHandler(t *testing.T) (*profile.Handler, *sessionhub.Hub) {
	t.Helper()
	hub, _ := testutil.NewHub(t)
	logger := zap.NewNop()
	testutil.Register(t, hub, "s1", "first@example.com")
	testutil.Register(t, hub, "s2", "second@example.com")
	return profile.NewHandler(hub, uierrors.NewErrorLogger(logger), logger), hub
}

func profileForm(t *testing.T, fields map[string]string, picture []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if picture != nil {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="picture"; filename="me.png"`)
		hdr.Set("Content-Type", "application/octet-stream")
		pw, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := pw.Write(picture); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/profile", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func save(t *testing.T, h *profile.Handler, req *http.Request, sid string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HandleSave(rec, testutil.WithSession(req, sid))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestHandleSave(t *testing.T) {
	h, hub := newTestHandler(t)

	save(t, h, profileForm(t, map[string]string{
		"first_name":  " Ada ",
		"last_name":   "Lovelace",
		"birth_date":  "1815-12-10",
		"nationality": "British",
	}, pngHeader), "s2")

	st := testutil.State(t, hub, "s2")
	if st.CurrentView != controller.ViewDashboard {
		t.Errorf("view: got %q, want dashboard", st.CurrentView)
	}
	u := st.CurrentUser
	if u.FirstName != "Ada" || u.LastName != "Lovelace" || u.BirthDate != "1815-12-10" || u.Nationality != "British" {
		t.Errorf("profile fields: %+v", u)
	}
	if !strings.HasPrefix(u.ProfilePicture, "data:image/png;base64,") {
		t.Errorf("picture should be stored as a png data URL, got %.40q", u.ProfilePicture)
	}
	if u.Role != models.RoleStudent {
		t.Errorf("role must not change, got %q", u.Role)
	}

	// The primary admin sees the update in the shared collection.
	testutil.Session(t, hub, "s1", func(s *sessionhub.Session) {
		if _, err := s.Ctl.Dispatch(t.Context(), controller.GoToDashboard{}); err != nil {
			t.Fatal(err)
		}
		users := s.Ctl.State().AllUsers
		i := models.FindUser(users, "second@example.com")
		if i < 0 || users[i].FirstName != "Ada" {
			t.Errorf("collection copy not updated: %+v", users)
		}
	})
}

func TestHandleSave_KeepsPictureWhenNoneChosen(t *testing.T) {
	h, hub := newTestHandler(t)
	save(t, h, profileForm(t, map[string]string{"first_name": "Ada"}, pngHeader), "s2")

	save(t, h, profileForm(t, map[string]string{"first_name": "Augusta"}, nil), "s2")

	u := testutil.State(t, hub, "s2").CurrentUser
	if u.FirstName != "Augusta" || u.ProfilePicture == "" {
		t.Fatalf("picture should survive a text-only update: %+v", u)
	}

	save(t, h, profileForm(t, map[string]string{"first_name": "Augusta", "remove_picture": "on"}, nil), "s2")
	if u := testutil.State(t, hub, "s2").CurrentUser; u.ProfilePicture != "" {
		t.Fatal("remove_picture should clear the picture")
	}
}

func TestHandleSave_RejectsNonImage(t *testing.T) {
	h, hub := newTestHandler(t)

	save(t, h, profileForm(t, map[string]string{"first_name": "Ada"}, []byte("just some text, not a picture")), "s2")

	u := testutil.State(t, hub, "s2").CurrentUser
	if u.FirstName != "" || u.ProfilePicture != "" {
		t.Fatalf("nothing should be saved: %+v", u)
	}
	testutil.Session(t, hub, "s2", func(s *sessionhub.Session) {
		n := s.TakeNotices()
		if len(n) != 1 || !strings.Contains(n[0].Text, "image") {
			t.Errorf("notices: %+v", n)
		}
	})
}

func TestHandleSave_InvalidBirthDate(t *testing.T) {
	h, hub := newTestHandler(t)

	save(t, h, profileForm(t, map[string]string{"first_name": "Ada", "birth_date": "10/12/1815"}, nil), "s2")

	if u := testutil.State(t, hub, "s2").CurrentUser; u.FirstName != "" {
		t.Fatalf("invalid birth date should block the save: %+v", u)
	}
}

func TestPage_Welcome(t *testing.T) {
	_, hub := newTestHandler(t)

	testutil.Session(t, hub, "s2", func(s *sessionhub.Session) {
		name, data := profile.Page(httptest.NewRequest(http.MethodGet, "/", nil), s)
		if name != "profile_edit" {
			t.Errorf("template: got %q", name)
		}
		if !strings.Contains(fmt.Sprintf("%+v", data), "Welcome:true") {
			t.Errorf("a new account should get the welcome form: %+v", data)
		}
	})
}
