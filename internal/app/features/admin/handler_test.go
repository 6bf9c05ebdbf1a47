package admin_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/features/admin"
	"github.com/dalemusser/studydesk/internal/app/store/appdata"
	"github.com/dalemusser/studydesk/internal/app/store/kv"
	"github.com/dalemusser/studydesk/internal/app/system/auditlog"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/domain/models"
	"github.com/dalemusser/studydesk/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) (*admin.Handler, *sessionhub.Hub) {
	t.Helper()
	hub, _ := testutil.NewHub(t)
	logger := zap.NewNop()
	return admin.NewHandler(hub, auditlog.New(logger, auditlog.Config{}), uierrors.NewErrorLogger(logger), logger), hub
}

func post(t *testing.T, fn http.HandlerFunc, req *http.Request, sid string) {
	t.Helper()
	rec := httptest.NewRecorder()
	fn(rec, testutil.WithSession(req, sid))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("%s: status got %d, want %d", req.URL.Path, rec.Code, http.StatusSeeOther)
	}
}

// refreshed returns sid's state after a no-op dispatch, so collections
// written by other sessions are visible.
func refreshed(t *testing.T, hub *sessionhub.Hub, sid string) controller.State {
	t.Helper()
	var st controller.State
	testutil.Session(t, hub, sid, func(s *sessionhub.Session) {
		if _, err := s.Ctl.Dispatch(context.Background(), controller.GoToDashboard{}); err != nil {
			t.Fatalf("refresh: %v", err)
		}
		st = s.Ctl.State()
	})
	return st
}

// setup registers a primary admin (session "admin") and a student
// (session "student").
func setup(t *testing.T) (*admin.Handler, *sessionhub.Hub) {
	t.Helper()
	h, hub := newTestHandler(t)
	testutil.Register(t, hub, "admin", "admin@example.com")
	testutil.Register(t, hub, "student", "student@example.com")
	return h, hub
}

func TestHandlePromote_PrimaryAdmin(t *testing.T) {
	h, hub := setup(t)

	post(t, h.HandlePromote, testutil.PostForm("/admin/users/promote", url.Values{"email": {"student@example.com"}}), "admin")

	st := testutil.State(t, hub, "admin")
	i := models.FindUser(st.AllUsers, "student@example.com")
	if i < 0 || st.AllUsers[i].Role != models.RoleAdmin {
		t.Fatalf("student should be promoted, users: %+v", st.AllUsers)
	}
}

func TestHandlePromote_SecondaryAdminDenied(t *testing.T) {
	h, hub := setup(t)
	post(t, h.HandlePromote, testutil.PostForm("/admin/users/promote", url.Values{"email": {"student@example.com"}}), "admin")
	testutil.Register(t, hub, "third", "third@example.com")

	// student@example.com is now an admin but not the primary one.
	post(t, h.HandlePromote, testutil.PostForm("/admin/users/promote", url.Values{"email": {"third@example.com"}}), "student")

	st := refreshed(t, hub, "admin")
	i := models.FindUser(st.AllUsers, "third@example.com")
	if i < 0 || st.AllUsers[i].Role != models.RoleStudent {
		t.Fatalf("secondary admin must not promote, users: %+v", st.AllUsers)
	}
}

func TestHandlePostAnnouncement(t *testing.T) {
	h, hub := setup(t)

	post(t, h.HandlePostAnnouncement, testutil.PostForm("/admin/announcements", url.Values{"content": {"  Exam on Monday  "}}), "admin")

	st := refreshed(t, hub, "student")
	if len(st.Announcements) != 1 || st.Announcements[0].Content != "Exam on Monday" {
		t.Fatalf("announcements visible to students: %+v", st.Announcements)
	}
}

func TestHandlePostAnnouncement_Blank(t *testing.T) {
	h, hub := setup(t)

	post(t, h.HandlePostAnnouncement, testutil.PostForm("/admin/announcements", url.Values{"content": {"   "}}), "admin")

	if st := testutil.State(t, hub, "admin"); len(st.Announcements) != 0 {
		t.Fatalf("blank announcement must not be saved: %+v", st.Announcements)
	}
	var notices []sessionhub.Notice
	testutil.Session(t, hub, "admin", func(s *sessionhub.Session) { notices = s.TakeNotices() })
	if len(notices) != 1 || notices[0].Kind != "error" {
		t.Errorf("expected one error notice, got %+v", notices)
	}
}

func TestHandlePostAnnouncement_StudentDenied(t *testing.T) {
	h, hub := setup(t)

	post(t, h.HandlePostAnnouncement, testutil.PostForm("/admin/announcements", url.Values{"content": {"hi"}}), "student")

	if st := refreshed(t, hub, "admin"); len(st.Announcements) != 0 {
		t.Fatalf("students cannot post: %+v", st.Announcements)
	}
}

// refusingStore fails writes to keys ending in suffix while refuse is set.
type refusingStore struct {
	kv.Store
	suffix string
	refuse bool
}

func (r *refusingStore) Set(ctx context.Context, key, value string) error {
	if r.refuse && strings.HasSuffix(key, r.suffix) {
		return errors.New("write refused")
	}
	return r.Store.Set(ctx, key, value)
}

func TestHandlePostAnnouncement_RefusedWrite(t *testing.T) {
	store := &refusingStore{Store: kv.NewMemory(), suffix: appdata.KeyAnnouncements}
	logger := zap.NewNop()
	hub := sessionhub.New(store, logger,
		sessionhub.WithControllerOptions(controller.WithBcryptCost(bcrypt.MinCost)))
	h := admin.NewHandler(hub, auditlog.New(logger, auditlog.Config{}), uierrors.NewErrorLogger(logger), logger)
	testutil.Register(t, hub, "admin", "admin@example.com")
	store.refuse = true

	post(t, h.HandlePostAnnouncement, testutil.PostForm("/admin/announcements", url.Values{"content": {"hello"}}), "admin")

	if st := testutil.State(t, hub, "admin"); len(st.Announcements) != 0 {
		t.Fatalf("unsaved announcement must not be shown: %+v", st.Announcements)
	}
	var notices []sessionhub.Notice
	testutil.Session(t, hub, "admin", func(s *sessionhub.Session) { notices = s.TakeNotices() })
	if len(notices) != 1 || notices[0].Kind != "error" {
		t.Errorf("expected one error notice, got %+v", notices)
	}
}

func TestHandleDeleteAnnouncement(t *testing.T) {
	h, hub := setup(t)
	post(t, h.HandlePostAnnouncement, testutil.PostForm("/admin/announcements", url.Values{"content": {"hello"}}), "admin")
	id := testutil.State(t, hub, "admin").Announcements[0].ID

	req := testutil.WithChiURLParam(testutil.PostForm("/admin/announcements/"+id+"/delete", nil), "id", id)
	post(t, h.HandleDeleteAnnouncement, req, "admin")

	if st := testutil.State(t, hub, "admin"); len(st.Announcements) != 0 {
		t.Fatalf("announcement should be deleted: %+v", st.Announcements)
	}
}

func TestHandleOpenStudent(t *testing.T) {
	h, hub := setup(t)

	post(t, h.HandleOpenStudent, testutil.PostForm("/admin/students/open", url.Values{"email": {"student@example.com"}}), "admin")

	st := testutil.State(t, hub, "admin")
	if st.CurrentView != controller.ViewStudentDetail || st.SelectedStudent == nil {
		t.Fatalf("expected student detail, got view %q", st.CurrentView)
	}
	if st.SelectedStudent.Password != "" {
		t.Error("selected student must not carry a password hash")
	}

	req := httptest.NewRequest("GET", "/", nil)
	testutil.Session(t, hub, "admin", func(s *sessionhub.Session) {
		if name, _ := admin.StudentPage(req, s); name != "student_detail" {
			t.Errorf("page name: got %q", name)
		}
	})
}

func TestServePanel_NonAdminEmpty(t *testing.T) {
	h, _ := setup(t)

	req := testutil.WithSession(httptest.NewRequest("GET", "/admin/panel", nil), "student")
	rec := httptest.NewRecorder()
	h.ServePanel(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusNoContent)
	}
}
