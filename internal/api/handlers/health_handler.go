package handlers

import (
	"net/http"

	"github.com/lvidal/tasklist-be/internal/monitoring"
)

// HealthHandler serves liveness plus the latest monitoring snapshot.
type HealthHandler struct {
	stats *monitoring.StatReporter
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(stats *monitoring.StatReporter) *HealthHandler {
	return &HealthHandler{stats: stats}
}

// Get reports service health.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"stats":  h.stats.Snapshot(),
	})
}
