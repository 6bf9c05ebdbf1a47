// internal/app/features/heartbeat/handler.go
package heartbeat

import (
	"net/http"

	"github.com/dalemusser/studydesk/internal/app/system/auth"
	"github.com/dalemusser/studydesk/internal/app/system/sessionhub"
	"go.uber.org/zap"
)

// Handler keeps open pages' sessions alive. Idle eviction drops view-local
// state (an exam in progress, an unsaved module draft), so a page that is
// still open reports in periodically.
type Handler struct {
	Hub *sessionhub.Hub
	Log *zap.Logger
}

// NewHandler creates a new heartbeat handler.
func NewHandler(hub *sessionhub.Hub, logger *zap.Logger) *Handler {
	return &Handler{Hub: hub, Log: logger}
}

// ServeHeartbeat handles POST /api/heartbeat.
// Refreshes the live session's last-seen time. Sessions that were already
// evicted are left alone; the next page load restores them from storage.
func (h *Handler) ServeHeartbeat(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.SessionID(r)
	if !ok {
		w.WriteHeader(http.StatusNoContent) // Silent fail - no session
		return
	}
	if !h.Hub.Touch(id) {
		h.Log.Debug("heartbeat for evicted session")
	}
	w.WriteHeader(http.StatusNoContent)
}
