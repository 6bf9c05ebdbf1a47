package testutil

import (
	"context"
	"testing"

	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/store/kv"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Password is the password every fixture account is registered with.
const Password = "correct horse"

// NewHub returns a hub over a fresh memory store. Controllers hash with the
// minimum bcrypt cost to keep tests fast.
func NewHub(t *testing.T) (*sessionhub.Hub, *kv.Memory) {
	t.Helper()
	store := kv.NewMemory()
	hub := sessionhub.New(store, zap.NewNop(),
		sessionhub.WithControllerOptions(controller.WithBcryptCost(bcrypt.MinCost)))
	return hub, store
}

// Register creates an account and signs session id in as it. The first
// account registered on a store becomes the primary admin.
func Register(t *testing.T, hub *sessionhub.Hub, id, email string) {
	t.Helper()
	err := hub.Do(context.Background(), id, func(s *sessionhub.Session) error {
		_, err := s.Ctl.Dispatch(context.Background(), controller.Register{Email: email, Password: Password})
		return err
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
}

// State returns a snapshot of session id's controller state.
func State(t *testing.T, hub *sessionhub.Hub, id string) controller.State {
	t.Helper()
	var st controller.State
	if err := hub.Do(context.Background(), id, func(s *sessionhub.Session) error {
		st = s.Ctl.State()
		return nil
	}); err != nil {
		t.Fatalf("state: %v", err)
	}
	return st
}

// Session runs fn on session id, failing the test on error.
func Session(t *testing.T, hub *sessionhub.Hub, id string, fn func(s *sessionhub.Session)) {
	t.Helper()
	if err := hub.Do(context.Background(), id, func(s *sessionhub.Session) error {
		fn(s)
		return nil
	}); err != nil {
		t.Fatalf("session %s: %v", id, err)
	}
}
