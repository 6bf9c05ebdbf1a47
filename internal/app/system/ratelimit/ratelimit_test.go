package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Window(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := New(2, time.Minute)
	defer l.Stop()
	l.now = func() time.Time { return now }

	if !l.Allow("s1") || !l.Allow("s1") {
		t.Fatal("first two requests should be allowed")
	}
	if l.Allow("s1") {
		t.Error("third request in window should be refused")
	}
	if got := l.Remaining("s1"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
	if !l.Allow("s2") {
		t.Error("other keys have their own window")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("s1") {
		t.Error("a new window should allow again")
	}
	if got := l.Remaining("s1"); got != 1 {
		t.Errorf("Remaining = %d, want 1", got)
	}

	l.Reset("s1")
	if got := l.Remaining("s1"); got != 2 {
		t.Errorf("after Reset Remaining = %d, want 2", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded", "203.0.113.7, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.7"},
		{"real ip", "", " 198.51.100.4 ", "10.0.0.2:1234", "198.51.100.4"},
		{"remote with port", "", "", "192.0.2.1:5555", "192.0.2.1"},
		{"remote without port", "", "", "192.0.2.1", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter_PerEmail(t *testing.T) {
	ll := NewLoginLimiter()
	defer ll.Stop()

	for i := range 5 {
		r := httptest.NewRequest("POST", "/auth/login", nil)
		r.RemoteAddr = "192.0.2.1:1"
		if ok, _ := ll.Check(r, "Ana@Example.com "); !ok {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	r := httptest.NewRequest("POST", "/auth/login", nil)
	r.RemoteAddr = "192.0.2.9:1"
	ok, reason := ll.Check(r, "ana@example.com")
	if ok || reason == "" {
		t.Errorf("sixth attempt for the same email should be refused with a reason")
	}

	ll.ResetEmail("ana@example.com")
	if ok, _ := ll.Check(r, "ana@example.com"); !ok {
		t.Error("ResetEmail should clear the email window")
	}
}
