// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/studydesk/internal/app/store/kv"
	"go.uber.org/zap"
)

// Evictor drops in-memory sessions idle since before a cutoff.
type Evictor interface {
	EvictIdle(cutoff time.Time) int
}

// SessionCleanup is a background worker that evicts idle sessions from
// memory and removes session records no browser can still present.
type SessionCleanup struct {
	hub       Evictor
	sweeper   kv.Sweeper // nil when the store cannot sweep
	log       *zap.Logger
	interval  time.Duration
	idle      time.Duration
	retention time.Duration
	now       func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewSessionCleanup creates a cleanup worker.
//
// Parameters:
//   - hub: the live sessions
//   - sweeper: the store holding session-scoped keys, or nil
//   - interval: how often to run cleanup (e.g., 1 minute)
//   - idle: how long a session may sit unused in memory
//   - retention: how long an unwritten session record is kept; at least the cookie lifetime
func NewSessionCleanup(hub Evictor, sweeper kv.Sweeper, logger *zap.Logger, interval, idle, retention time.Duration) *SessionCleanup {
	return &SessionCleanup{
		hub:       hub,
		sweeper:   sweeper,
		log:       logger,
		interval:  interval,
		idle:      idle,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *SessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle", w.idle),
		zap.Duration("retention", w.retention))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *SessionCleanup) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("session cleanup worker stopped")
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *SessionCleanup) cleanup() {
	now := w.now()
	if n := w.hub.EvictIdle(now.Add(-w.idle)); n > 0 {
		w.log.Info("evicted idle sessions", zap.Int("count", n))
	}

	if w.sweeper == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.sweeper.RemoveStale(ctx, kv.SessionKeyPrefix, now.Add(-w.retention))
	if err != nil {
		w.log.Error("failed to remove stale session records", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("removed stale session records", zap.Int64("count", count))
	}
}
