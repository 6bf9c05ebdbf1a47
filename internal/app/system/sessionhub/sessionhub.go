// Package sessionhub keeps one live Session per browser session and
// serializes the interactions of each session. Different sessions run
// concurrently; the hub lock only guards the session map.
package sessionhub

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/studydesk/internal/app/controller"
	"github.com/dalemusser/studydesk/internal/app/store/appdata"
	"github.com/dalemusser/studydesk/internal/app/store/kv"
	"github.com/dalemusser/studydesk/internal/app/system/examsim"
	"github.com/dalemusser/studydesk/internal/app/system/moduledraft"
	"go.uber.org/zap"
)

// Notice is a one-shot message shown on the next render of a view.
type Notice struct {
	Kind string // "error" | "success"
	Text string
}

// Session is everything one browser session holds in memory: the
// controller plus view-local state that is never persisted.
type Session struct {
	ID   string
	Ctl  *controller.Controller
	Exam *examsim.Sim

	// Draft is the module editor form, set while the editModule view is open.
	Draft *moduledraft.Draft

	// Register selects the registration form on the auth view.
	Register bool

	mu       sync.Mutex // held while fn runs in Do
	notices  []Notice
	lastSeen time.Time // guarded by the hub lock
}

// Flash queues a notice for the next render.
func (s *Session) Flash(kind, text string) {
	s.notices = append(s.notices, Notice{Kind: kind, Text: text})
}

// TakeNotices returns and clears the queued notices.
func (s *Session) TakeNotices() []Notice {
	n := s.notices
	s.notices = nil
	return n
}

// Hub owns the live sessions.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Session

	// writeMu is shared by every controller the hub creates.
	writeMu sync.Mutex

	store   kv.Store
	log     *zap.Logger
	now     func() time.Time
	ctlOpts []controller.Option
}

// Option configures a Hub.
type Option func(*Hub)

// WithClock replaces time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// WithControllerOptions passes options to every controller the hub creates.
func WithControllerOptions(opts ...controller.Option) Option {
	return func(h *Hub) { h.ctlOpts = append(h.ctlOpts, opts...) }
}

// New returns an empty hub over store.
func New(store kv.Store, log *zap.Logger, opts ...Option) *Hub {
	h := &Hub{
		sessions: make(map[string]*Session),
		store:    store,
		log:      log,
		now:      time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Do runs fn with the session for id while holding that session's lock.
// The session is created and initialized from storage on first use; other
// requests for it wait until Init is done. Other sessions are not blocked.
func (h *Hub) Do(ctx context.Context, id string, fn func(s *Session) error) error {
	s := h.acquire(id)
	defer s.mu.Unlock()

	if s.Ctl == nil {
		h.open(ctx, s)
	}
	return fn(s)
}

// acquire returns the live session for id with its lock held. A session
// evicted while the caller waited for its lock is replaced.
func (h *Hub) acquire(id string) *Session {
	for {
		h.mu.Lock()
		s, ok := h.sessions[id]
		if !ok {
			s = &Session{ID: id, Exam: examsim.New()}
			h.sessions[id] = s
		}
		s.lastSeen = h.now()
		h.mu.Unlock()

		s.mu.Lock()
		h.mu.Lock()
		live := h.sessions[id] == s
		h.mu.Unlock()
		if live {
			return s
		}
		s.mu.Unlock()
	}
}

func (h *Hub) open(ctx context.Context, s *Session) {
	repo := appdata.New(h.store, kv.WithPrefix(h.store, kv.SessionPrefix(s.ID)))
	opts := append([]controller.Option{controller.WithWriteLock(&h.writeMu)}, h.ctlOpts...)
	s.Ctl = controller.New(repo, h.log.With(zap.String("session", shortID(s.ID))), opts...)
	s.Ctl.Init(ctx)
	h.log.Debug("session opened", zap.String("session", shortID(s.ID)))
}

// Touch marks a live session as used. It reports false when id has no live
// session; nothing is opened in that case.
func (h *Hub) Touch(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[id]
	if ok {
		s.lastSeen = h.now()
	}
	return ok
}

// EvictIdle drops sessions not used since before cutoff. Their persisted
// records stay, so the next request restores the signed-in user. A session
// that is busy right now is kept.
func (h *Hub) EvictIdle(cutoff time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for id, s := range h.sessions {
		if !s.lastSeen.Before(cutoff) || !s.mu.TryLock() {
			continue
		}
		delete(h.sessions, id)
		s.mu.Unlock()
		n++
	}
	return n
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
