// Package controller owns the application state of one browser session and
// mediates every transition. Views never write storage; they dispatch
// commands here and render the snapshot returned by State.
//
// A Controller is not safe for concurrent use. The session hub serializes
// calls per session; controllers over the same store share a write lock so
// rewrites of the shared collections do not interleave.
package controller

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"time"

	"github.com/dalemusser/studydesk/internal/app/store/appdata"
	"github.com/dalemusser/studydesk/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// View names one full-screen mode.
type View string

const (
	ViewNone          View = ""
	ViewAuth          View = "auth"
	ViewDashboard     View = "dashboard"
	ViewModule        View = "module"
	ViewExam          View = "exam"
	ViewReview        View = "review"
	ViewEditProfile   View = "editProfile"
	ViewStudentDetail View = "studentDetail"
	ViewEditModule    View = "editModule"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrNotSignedIn        = errors.New("not signed in")
)

// State is everything a view may read. Pointer fields are selections and
// are nil when unset.
type State struct {
	Ready          bool
	CurrentUser    *models.User
	AllUsers       []models.User // populated only for admins
	IsPrimaryAdmin bool
	CurrentView    View

	SelectedModule  *models.Module
	SelectedStudent *models.User
	ModuleToEdit    *models.Module
	LastAttempt     *models.ExamAttempt

	Modules       []models.Module
	Announcements []models.Announcement
}

// Controller holds one session's State.
type Controller struct {
	repo       *appdata.Repo
	log        *zap.Logger
	now        func() time.Time
	bcryptCost int
	writeMu    *sync.Mutex

	st State
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now for date stamps and generated ids.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithBcryptCost sets the cost used when hashing new passwords.
func WithBcryptCost(cost int) Option {
	return func(c *Controller) { c.bcryptCost = cost }
}

// WithWriteLock shares mu with the other controllers over the same store.
// It is held from the reload of a shared collection to its save.
func WithWriteLock(mu *sync.Mutex) Option {
	return func(c *Controller) { c.writeMu = mu }
}

// New returns an uninitialized Controller. Call Init before rendering.
func New(repo *appdata.Repo, log *zap.Logger, opts ...Option) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		repo:       repo,
		log:        log,
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
		writeMu:    new(sync.Mutex),
		st:         State{CurrentView: ViewDashboard},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns a snapshot of the current state. Slices are shared with the
// controller and must be treated as read-only.
func (c *Controller) State() State {
	return c.st
}

// Screen applies the dispatch rule: nothing until ready, the auth view while
// signed out, otherwise the current view (dashboard when unset). Views that
// need a selection render nothing without one.
func (c *Controller) Screen() View {
	if !c.st.Ready {
		return ViewNone
	}
	if c.st.CurrentUser == nil {
		return ViewAuth
	}
	switch c.st.CurrentView {
	case ViewModule:
		if c.st.SelectedModule == nil {
			return ViewNone
		}
		return ViewModule
	case ViewStudentDetail:
		if c.st.SelectedStudent == nil {
			return ViewNone
		}
		return ViewStudentDetail
	case ViewExam, ViewReview, ViewEditProfile, ViewEditModule:
		return c.st.CurrentView
	default:
		return ViewDashboard
	}
}

// Init loads the collections and restores the session. It never fails:
// unreadable data degrades to defaults and is logged.
func (c *Controller) Init(ctx context.Context) {
	c.writeMu.Lock()
	c.st.Modules = c.loadModules(ctx, true)
	c.st.Announcements = c.loadAnnouncements(ctx, true)
	c.writeMu.Unlock()
	c.restoreSession(ctx)
	c.st.Ready = true
}

func (c *Controller) loadModules(ctx context.Context, seed bool) []models.Module {
	mods, ok, err := c.repo.LoadModules(ctx)
	switch {
	case err != nil:
		c.log.Warn("modules unreadable, using defaults", zap.Error(err))
		return models.SeedModules()
	case !ok:
		mods = models.SeedModules()
		if seed {
			if err := c.repo.SaveModules(ctx, mods); err != nil {
				c.log.Warn("seed modules not saved", zap.Error(err))
			}
		}
	}
	return mods
}

func (c *Controller) loadAnnouncements(ctx context.Context, seed bool) []models.Announcement {
	anns, ok, err := c.repo.LoadAnnouncements(ctx)
	switch {
	case err != nil:
		c.log.Warn("announcements unreadable, using defaults", zap.Error(err))
		return []models.Announcement{}
	case !ok:
		anns = []models.Announcement{}
		if seed {
			if err := c.repo.SaveAnnouncements(ctx, anns); err != nil {
				c.log.Warn("seed announcements not saved", zap.Error(err))
			}
		}
	}
	return anns
}

// restoreSession loads the session's user and reconciles it with the
// collection copy, which is authoritative. Any read failure signs the
// session out and removes the stale record.
func (c *Controller) restoreSession(ctx context.Context) {
	u, ok, err := c.repo.LoadCurrentUser(ctx)
	if err != nil {
		c.log.Warn("session user unreadable, signing out", zap.Error(err))
		c.dropSessionRecord(ctx)
		return
	}
	if !ok {
		return
	}

	users, _, err := c.repo.LoadUsers(ctx)
	if err != nil {
		c.log.Warn("users unreadable, signing out", zap.Error(err))
		c.dropSessionRecord(ctx)
		return
	}

	if i := models.FindUser(users, u.Email); i >= 0 {
		fresh := sessionCopy(users[i])
		if !reflect.DeepEqual(fresh, u) {
			c.log.Info("session user reconciled with collection", zap.String("email", u.Email))
			if err := c.repo.SaveCurrentUser(ctx, fresh); err != nil {
				c.log.Warn("reconciled session user not saved", zap.Error(err))
			}
		}
		u = fresh
	}

	c.st.CurrentUser = &u
	c.st.IsPrimaryAdmin = isPrimary(u, users)
	if u.IsAdmin() {
		c.st.AllUsers = users
	}
}

func (c *Controller) dropSessionRecord(ctx context.Context) {
	if err := c.repo.ClearCurrentUser(ctx); err != nil {
		c.log.Warn("stale session record not removed", zap.Error(err))
	}
}

// isPrimary reports whether u is the primary admin. The role is checked too,
// so a record that lost its admin role never keeps promotion rights.
func isPrimary(u models.User, users []models.User) bool {
	return u.IsAdmin() && u.Email == primaryEmail(users)
}

// primaryEmail returns the primary admin's email: the flagged record, or
// the first record of a collection written before the flag existed.
func primaryEmail(users []models.User) string {
	for _, u := range users {
		if u.Primary {
			return u.Email
		}
	}
	if len(users) > 0 {
		return users[0].Email
	}
	return ""
}

// sessionCopy is the snapshot kept in the session record. It never carries
// the password hash.
func sessionCopy(u models.User) models.User {
	s := u.Clone()
	s.Password = ""
	return s
}
