package heartbeat_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/studydesk/internal/app/features/heartbeat"
	"github.com/dalemusser/studydesk/internal/app/store/kv"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"github.com/dalemusser/studydesk/internal/testutil"
	"go.uber.org/zap"
)

func TestServeHeartbeat_NoSession(t *testing.T) {
	hub, _ := testutil.NewHub(t)
	handler := heartbeat.NewHandler(hub, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeHeartbeat(rec, httptest.NewRequest("POST", "/api/heartbeat", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestServeHeartbeat_KeepsSessionLive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hub := sessionhub.New(kv.NewMemory(), zap.NewNop(), sessionhub.WithClock(func() time.Time { return now }))
	handler := heartbeat.NewHandler(hub, zap.NewNop())

	testutil.Session(t, hub, "s1", func(*sessionhub.Session) {})

	now = now.Add(20 * time.Minute)
	rec := httptest.NewRecorder()
	handler.ServeHeartbeat(rec, testutil.WithSession(httptest.NewRequest("POST", "/api/heartbeat", nil), "s1"))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status: got %d", rec.Code)
	}

	// Opened 35 minutes ago, touched 15 minutes ago.
	now = now.Add(15 * time.Minute)
	if n := hub.EvictIdle(now.Add(-30 * time.Minute)); n != 0 {
		t.Fatalf("heartbeat should keep the session, evicted %d", n)
	}
	if hub.Len() != 1 {
		t.Fatalf("live sessions: got %d", hub.Len())
	}
}

func TestServeHeartbeat_DoesNotReopen(t *testing.T) {
	hub, _ := testutil.NewHub(t)
	handler := heartbeat.NewHandler(hub, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.ServeHeartbeat(rec, testutil.WithSession(httptest.NewRequest("POST", "/api/heartbeat", nil), "gone"))

	if hub.Len() != 0 {
		t.Errorf("heartbeat must not open a session, have %d", hub.Len())
	}
}
