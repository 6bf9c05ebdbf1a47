package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/studydesk/internal/app/store/kv"
	"github.com/dalemusser/studydesk/internal/testutil"
)

// exerciseStore runs the behaviour every Store implementation must share.
func exerciseStore(t *testing.T, s kv.Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want ok=false, nil", ok, err)
	}

	if err := s.Set(ctx, "usersDB", `[{"email":"a@b.co"}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, ok, err := s.Get(ctx, "usersDB")
	if err != nil || !ok {
		t.Fatalf("Get after Set = ok %v, err %v", ok, err)
	}
	if v != `[{"email":"a@b.co"}]` {
		t.Errorf("value: got %q", v)
	}

	if err := s.Set(ctx, "usersDB", "[]"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if v, _, _ := s.Get(ctx, "usersDB"); v != "[]" {
		t.Errorf("value after overwrite: got %q, want %q", v, "[]")
	}

	if err := s.Remove(ctx, "usersDB"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "usersDB"); ok {
		t.Error("key still present after Remove")
	}
	if err := s.Remove(ctx, "usersDB"); err != nil {
		t.Errorf("removing an absent key should not fail: %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseStore(t, kv.NewMemory())
}

func TestMongo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	exerciseStore(t, kv.NewMongo(db))
}

func TestPrefixed_IsolatesSessions(t *testing.T) {
	ctx := context.Background()
	base := kv.NewMemory()
	a := kv.WithPrefix(base, kv.SessionPrefix("a"))
	b := kv.WithPrefix(base, kv.SessionPrefix("b"))

	if err := a.Set(ctx, "currentUser", "alice"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok, _ := b.Get(ctx, "currentUser"); ok {
		t.Error("session b should not see session a's record")
	}
	if v, ok, _ := base.Get(ctx, "session:a:currentUser"); !ok || v != "alice" {
		t.Errorf("underlying key: got %q ok=%v", v, ok)
	}

	exerciseStore(t, a)
}

func TestMemory_RemoveStale(t *testing.T) {
	ctx := context.Background()
	m := kv.NewMemory()

	_ = m.Set(ctx, "session:old:currentUser", "x")
	_ = m.Set(ctx, "modulesDB", "[]")

	n, err := m.RemoveStale(ctx, kv.SessionKeyPrefix, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("RemoveStale failed: %v", err)
	}
	if n != 1 {
		t.Errorf("removed: got %d, want 1", n)
	}
	if _, ok, _ := m.Get(ctx, "modulesDB"); !ok {
		t.Error("shared key outside the prefix must survive")
	}

	_ = m.Set(ctx, "session:new:currentUser", "y")
	n, _ = m.RemoveStale(ctx, kv.SessionKeyPrefix, time.Now().Add(-time.Minute))
	if n != 0 {
		t.Errorf("fresh keys should survive, removed %d", n)
	}
}

func TestMongo_RemoveStale(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := kv.NewMongo(db)

	_ = s.Set(ctx, "session:old:currentUser", "x")
	_ = s.Set(ctx, "session.x", "not a session key")
	_ = s.Set(ctx, "usersDB", "[]")

	n, err := s.RemoveStale(ctx, kv.SessionKeyPrefix, time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("RemoveStale failed: %v", err)
	}
	if n != 1 {
		t.Errorf("removed: got %d, want 1", n)
	}
	if _, ok, _ := s.Get(ctx, "session.x"); !ok {
		t.Error("prefix must be matched literally")
	}
}
