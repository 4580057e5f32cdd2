package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/gps-tracker/internal/audit"
)

// handleListAudit returns audit entries newest first.
//
// Query parameters: entity_type, action, entity_id, limit (default 50,
// max 200), offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &filter.Limit}, {"offset", &filter.Offset}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeValidationError(w, p.name+" must be a non-negative integer")
			return
		}
		*p.dst = n
	}

	if s.audit == nil {
		writeJSON(w, http.StatusOK, audit.ListResult{Entries: []audit.Entry{}, Limit: audit.DefaultLimit})
		return
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.internalError(w, r, "listing audit entries", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
