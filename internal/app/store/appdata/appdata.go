// internal/app/store/appdata/appdata.go
package appdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dalemusser/studydesk/internal/app/store/kv"
	"github.com/dalemusser/studydesk/internal/domain/models"
)

// Storage keys. The three collections are shared by every session; the
// current-user record lives in the session-scoped store.
const (
	KeyUsers         = "usersDB"
	KeyCurrentUser   = "currentUser"
	KeyModules       = "modulesDB"
	KeyAnnouncements = "announcementsDB"
)

// MaxValueBytes caps one encoded value. A collection is stored as a single
// Mongo document, which may not exceed 16 MiB including the key and
// timestamps.
const MaxValueBytes = 15 << 20

var (
	// ErrCorrupt is returned when a stored value cannot be decoded.
	ErrCorrupt = errors.New("stored value is corrupt")

	// ErrTooLarge is returned when an encoded value exceeds MaxValueBytes.
	// Nothing is written.
	ErrTooLarge = errors.New("value exceeds the storage limit")
)

// Repo reads and writes the application's persisted slices as JSON text.
type Repo struct {
	shared  kv.Store
	session kv.Store
}

// New returns a Repo over the shared store and one session's store.
func New(shared, session kv.Store) *Repo {
	return &Repo{shared: shared, session: session}
}

// LoadUsers returns the user collection. ok is false when nothing is stored.
// Index 0 of a legacy collection is the primary admin.
func (r *Repo) LoadUsers(ctx context.Context) (users []models.User, ok bool, err error) {
	ok, err = load(ctx, r.shared, KeyUsers, &users)
	return users, ok, err
}

// SaveUsers persists the whole user collection.
func (r *Repo) SaveUsers(ctx context.Context, users []models.User) error {
	if users == nil {
		users = []models.User{}
	}
	return save(ctx, r.shared, KeyUsers, users)
}

// LoadModules returns the module catalog.
func (r *Repo) LoadModules(ctx context.Context) (modules []models.Module, ok bool, err error) {
	ok, err = load(ctx, r.shared, KeyModules, &modules)
	return modules, ok, err
}

// SaveModules persists the whole module catalog.
func (r *Repo) SaveModules(ctx context.Context, modules []models.Module) error {
	if modules == nil {
		modules = []models.Module{}
	}
	return save(ctx, r.shared, KeyModules, modules)
}

// LoadAnnouncements returns the announcements, newest first.
func (r *Repo) LoadAnnouncements(ctx context.Context) (anns []models.Announcement, ok bool, err error) {
	ok, err = load(ctx, r.shared, KeyAnnouncements, &anns)
	return anns, ok, err
}

// SaveAnnouncements persists the whole announcement collection.
func (r *Repo) SaveAnnouncements(ctx context.Context, anns []models.Announcement) error {
	if anns == nil {
		anns = []models.Announcement{}
	}
	return save(ctx, r.shared, KeyAnnouncements, anns)
}

// LoadCurrentUser returns the session's logged-in user snapshot.
func (r *Repo) LoadCurrentUser(ctx context.Context) (u models.User, ok bool, err error) {
	ok, err = load(ctx, r.session, KeyCurrentUser, &u)
	return u, ok, err
}

// SaveCurrentUser persists the session's logged-in user snapshot.
func (r *Repo) SaveCurrentUser(ctx context.Context, u models.User) error {
	return save(ctx, r.session, KeyCurrentUser, u)
}

// ClearCurrentUser removes the session record (logout).
func (r *Repo) ClearCurrentUser(ctx context.Context) error {
	return r.session.Remove(ctx, KeyCurrentUser)
}

func load(ctx context.Context, s kv.Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return true, fmt.Errorf("decode %s: %w: %v", key, ErrCorrupt, err)
	}
	return true, nil
}

func save(ctx context.Context, s kv.Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if len(b) > MaxValueBytes {
		return fmt.Errorf("write %s (%d bytes): %w", key, len(b), ErrTooLarge)
	}
	if err := s.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
