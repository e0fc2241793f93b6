package handlers

import (
	"net/http"

	"campaignsmith/internal/storage"
)

// HealthHandler reports whether the registry is reachable.
type HealthHandler struct {
	registry *storage.Registry
}

func NewHealthHandler(registry *storage.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	resp := HealthResponse{Status: "healthy", Timestamp: storage.NowISO()}
	if _, err := h.registry.List(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		resp.Status = "unhealthy"
	}
	writeJSON(w, status, resp)
}
