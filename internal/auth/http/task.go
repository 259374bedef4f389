package http

import (
	"net/http"

	"github.com/aussiebroadwan/designer/internal/auth/service"
	"github.com/aussiebroadwan/designer/pkg/httpx"
)

// TaskHandler starts and stops the heartbeat. Both calls are idempotent.
type TaskHandler struct {
	HeartbeatService *service.HeartbeatService
}

func (h *TaskHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.HeartbeatService.Start()
	httpx.WriteMessage(w, http.StatusOK, "Background task started")
}

func (h *TaskHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.HeartbeatService.Stop()
	httpx.WriteMessage(w, http.StatusOK, "Background task stopped")
}
