package api

import (
	"net/http"

	service "github.com/okian/cutoffs/internal/app"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps Dependencies
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Status string        `json:"status"`
	Stats  service.Stats `json:"stats"`
}

// HandleHealth handles GET /healthz. It answers 503 until a model is trained.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	st := h.deps.Stats()
	if !st.Started {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "starting", Stats: st})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Stats: st})
}
