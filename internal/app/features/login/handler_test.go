package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/studydesk/internal/app/features/errors"
	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/features/login"
	"github.com/dalemusser/studydesk/internal/app/system/auditlog"
	"github.com/dalemusser/studydesk/internal/app/system/ratelimit"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/domain/models"
	"github.com/dalemusser/studydesk/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *sessionhub.Hub) {
	t.Helper()
	hub, _ := testutil.NewHub(t)
	logger := zap.NewNop()
	limiter := ratelimit.NewLoginLimiter()
	t.Cleanup(limiter.Stop)
	h := login.NewHandler(hub, limiter, auditlog.New(logger, auditlog.Config{}), uierrors.NewErrorLogger(logger), logger)
	return h, hub
}

func post(t *testing.T, fn http.HandlerFunc, path, sid string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.WithSession(testutil.PostForm(path, form), sid)
	rec := httptest.NewRecorder()
	fn(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("%s: expected status %d, got %d", path, http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("%s: Location got %q, want /", path, loc)
	}
	return rec
}

func notices(t *testing.T, hub *sessionhub.Hub, sid string) []sessionhub.Notice {
	t.Helper()
	var n []sessionhub.Notice
	testutil.Session(t, hub, sid, func(s *sessionhub.Session) { n = s.TakeNotices() })
	return n
}

func TestHandleRegister_FirstUserIsAdmin(t *testing.T) {
	h, hub := newTestHandler(t)

	post(t, h.HandleRegister, "/auth/register", "s1", url.Values{
		"email":    {"first@example.com"},
		"password": {"secret"},
	})

	st := testutil.State(t, hub, "s1")
	if st.CurrentUser == nil {
		t.Fatal("expected a signed-in user")
	}
	if st.CurrentUser.Role != models.RoleAdmin || !st.IsPrimaryAdmin {
		t.Errorf("first user: role %q primary %v", st.CurrentUser.Role, st.IsPrimaryAdmin)
	}
	if st.CurrentView != controller.ViewEditProfile {
		t.Errorf("new users land on the profile editor, got %q", st.CurrentView)
	}

	post(t, h.HandleRegister, "/auth/register", "s2", url.Values{
		"email":    {"second@example.com"},
		"password": {"secret"},
	})
	if st := testutil.State(t, hub, "s2"); st.CurrentUser.Role != models.RoleStudent {
		t.Errorf("second user role: got %q", st.CurrentUser.Role)
	}
}

func TestHandleRegister_Validation(t *testing.T) {
	h, hub := newTestHandler(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"bad email", url.Values{"email": {"not-an-email"}, "password": {"x"}}},
		{"missing password", url.Values{"email": {"a@example.com"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post(t, h.HandleRegister, "/auth/register", "s1", tt.form)
			if st := testutil.State(t, hub, "s1"); st.CurrentUser != nil {
				t.Fatal("invalid registration must not sign in")
			}
			if n := notices(t, hub, "s1"); len(n) != 1 || n[0].Kind != "error" {
				t.Errorf("expected one error notice, got %+v", n)
			}
		})
	}
}

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	h, hub := newTestHandler(t)
	testutil.Register(t, hub, "s1", "taken@example.com")

	post(t, h.HandleRegister, "/auth/register", "s2", url.Values{
		"email":    {"taken@example.com"},
		"password": {"other"},
	})

	if st := testutil.State(t, hub, "s2"); st.CurrentUser != nil {
		t.Fatal("duplicate registration must not sign in")
	}
	n := notices(t, hub, "s2")
	if len(n) != 1 || n[0].Text != "An account with that email already exists." {
		t.Errorf("unexpected notices %+v", n)
	}
}

func TestHandleLogin(t *testing.T) {
	h, hub := newTestHandler(t)
	testutil.Register(t, hub, "setup", "user@example.com")

	post(t, h.HandleLogin, "/auth/login", "s1", url.Values{
		"email":    {"user@example.com"},
		"password": {"wrong"},
	})
	if st := testutil.State(t, hub, "s1"); st.CurrentUser != nil {
		t.Fatal("wrong password must not sign in")
	}
	if n := notices(t, hub, "s1"); len(n) != 1 || n[0].Text != "Invalid email or password." {
		t.Errorf("unexpected notices %+v", n)
	}

	post(t, h.HandleLogin, "/auth/login", "s1", url.Values{
		"email":    {"user@example.com"},
		"password": {testutil.Password},
	})
	st := testutil.State(t, hub, "s1")
	if st.CurrentUser == nil || st.CurrentUser.Email != "user@example.com" {
		t.Fatalf("expected user@example.com signed in, got %+v", st.CurrentUser)
	}
	if st.CurrentUser.Password != "" {
		t.Error("session copy must not carry the password hash")
	}
	if st.CurrentView != controller.ViewDashboard {
		t.Errorf("view: got %q, want dashboard", st.CurrentView)
	}
}

func TestHandleLogin_RateLimited(t *testing.T) {
	h, hub := newTestHandler(t)
	testutil.Register(t, hub, "setup", "user@example.com")

	for i := 0; i < 5; i++ {
		post(t, h.HandleLogin, "/auth/login", "s1", url.Values{
			"email":    {"user@example.com"},
			"password": {"wrong"},
		})
	}
	post(t, h.HandleLogin, "/auth/login", "s1", url.Values{
		"email":    {"user@example.com"},
		"password": {testutil.Password},
	})

	if st := testutil.State(t, hub, "s1"); st.CurrentUser != nil {
		t.Fatal("sign-in past the per-email limit must be refused")
	}
}

func TestHandleLogout(t *testing.T) {
	h, hub := newTestHandler(t)
	testutil.Register(t, hub, "s1", "user@example.com")

	post(t, h.HandleLogout, "/auth/logout", "s1", nil)

	st := testutil.State(t, hub, "s1")
	if st.CurrentUser != nil {
		t.Fatal("expected signed out")
	}
	if got := testutil.State(t, hub, "s1"); got.LastAttempt != nil {
		t.Error("last attempt should be cleared on sign-out")
	}
}

func TestHandleMode(t *testing.T) {
	h, hub := newTestHandler(t)

	post(t, h.HandleMode, "/auth/mode", "s1", url.Values{"mode": {"register"}})

	var register bool
	testutil.Session(t, hub, "s1", func(s *sessionhub.Session) { register = s.Register })
	if !register {
		t.Fatal("expected registration form selected")
	}

	req := testutil.WithSession(httptest.NewRequest("GET", "/", nil), "s1")
	testutil.Session(t, hub, "s1", func(s *sessionhub.Session) {
		name, _ := login.Page(req, s)
		if name != "auth" {
			t.Errorf("page name: got %q", name)
		}
	})
}
