package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/studydesk/internal/app/store/kv"
	"github.com/dalemusser/studydesk/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Store   kv.Store
	Storage string // "mongo" or "memory"
	Log     *zap.Logger
}

// NewHandler constructs a health Handler over the application store.
func NewHandler(store kv.Store, storage string, logger *zap.Logger) *Handler {
	return &Handler{
		Store:   store,
		Storage: storage,
		Log:     logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Storage  string `json:"storage"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "storage":"mongo", "database":"connected" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "storage":"mongo", "database":"disconnected", "message":"Database unavailable", "error":"…"}
//
// Stores without a server (memory) always report connected.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Storage:  h.Storage,
		Database: "connected",
	}

	if p, ok := h.Store.(kv.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			h.Log.Error("health-check: store ping failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			resp.Status = "error"
			resp.Database = "disconnected"
			resp.Message = "Database unavailable"
			resp.Error = err.Error()
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
