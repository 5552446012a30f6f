package handler

import (
	"context"
	"net/http"
	"time"

	"vantage/internal/httputil"
)

// Pinger is anything the health check can probe, e.g. the pgx pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and dependency reachability
type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			deps[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	httputil.RespondJSON(w, status, map[string]interface{}{
		"status":       state,
		"time":         time.Now(),
		"dependencies": deps,
	})
}
