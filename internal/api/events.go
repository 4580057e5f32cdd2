package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nerrad567/gps-tracker/internal/audit"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/influxdb"
	"github.com/nerrad567/gps-tracker/internal/reading"
)

// EventPublisher announces created and deleted entities. It is satisfied
// by *mqtt.Client.
type EventPublisher interface {
	PublishEvent(entity, action string, data any) error
}

// ReadingMirror copies stored readings to a secondary store. It is
// satisfied by *influxdb.Client.
type ReadingMirror interface {
	WriteReading(ctx context.Context, r influxdb.Reading) error
}

// internalError logs err and writes a generic 500.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.Error(op+" failed", "error", err, "request_id", requestIDFrom(r.Context()))
	writeInternalError(w, "internal server error")
}

// recordAudit writes an audit entry for a completed mutation. A failure is
// logged and does not affect the response.
func (s *Server) recordAudit(r *http.Request, action, entityType string, id int64, details map[string]any) {
	if s.audit == nil {
		return
	}
	entry := &audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   strconv.FormatInt(id, 10),
		Actor:      actorName(r.Context()),
		Details:    details,
	}
	if err := s.audit.Create(r.Context(), entry); err != nil {
		s.logger.Warn("audit write failed",
			"error", err,
			"action", action,
			"entity_type", entityType,
			"entity_id", id,
			"request_id", requestIDFrom(r.Context()),
		)
	}
}

// publishEvent sends an entity event when MQTT is configured.
func (s *Server) publishEvent(r *http.Request, entity, action string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(entity, action, data); err != nil {
		s.logger.Warn("event publish failed",
			"error", err,
			"entity", entity,
			"action", action,
			"request_id", requestIDFrom(r.Context()),
		)
	}
}

// mirrorReading writes rd to the time-series mirror when configured.
func (s *Server) mirrorReading(r *http.Request, rd *reading.Reading) {
	if s.mirror == nil {
		return
	}
	err := s.mirror.WriteReading(r.Context(), influxdb.Reading{
		ID:          rd.ID,
		DeviceID:    rd.DeviceID,
		Coordinates: rd.Coordinates,
		Time:        rd.Timestamp,
	})
	if err != nil {
		s.logger.Warn("reading mirror write failed",
			"error", err,
			"registro_id", rd.ID,
			"request_id", requestIDFrom(r.Context()),
		)
	}
}
