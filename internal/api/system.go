package api

import (
	"context"
	"net/http"
	"time"
)

// healthCheckTimeout bounds each component check in /api/health.
const healthCheckTimeout = 2 * time.Second

// handleRoot answers GET /.
func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Hello World"})
}

// handleHealth reports the server and component status. Only a failing
// database makes the service unavailable; event and mirror failures are
// reported but tolerated.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	components := map[string]string{}

	if s.db != nil {
		components["database"] = "ok"
		if err := s.db.HealthCheck(ctx); err != nil {
			s.logger.Warn("database health check failed", "error", err)
			components["database"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}
	components["mqtt"] = optionalHealth(ctx, s.events)
	components["influxdb"] = optionalHealth(ctx, s.mirror)

	overall := "ok"
	if status != http.StatusOK {
		overall = "unavailable"
	}
	writeJSON(w, status, map[string]any{
		"status":     overall,
		"version":    s.version,
		"components": components,
	})
}

// optionalHealth reports "disabled" for a nil integration, and otherwise
// uses its HealthCheck method when it has one.
func optionalHealth(ctx context.Context, v any) string {
	if v == nil {
		return "disabled"
	}
	hc, ok := v.(HealthChecker)
	if !ok {
		return "ok"
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return "error"
	}
	return "ok"
}
