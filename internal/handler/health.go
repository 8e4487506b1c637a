package handler

import (
	"net/http"
	"time"

	"foldervault/internal/domain/repositories"
	"foldervault/internal/httputil"
)

// HealthHandler reports liveness and store connectivity
type HealthHandler struct {
	store repositories.StoreHealth
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store repositories.StoreHealth) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health reports process liveness and the store connection state
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"storeState": h.store.State(r.Context()),
	})
}

// DBPing round-trips to the store
// GET /db-ping
func (h *HealthHandler) DBPing(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.store.Ping(r.Context()); err != nil {
		httputil.RespondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"latencyMs": time.Since(start).Milliseconds(),
	})
}
