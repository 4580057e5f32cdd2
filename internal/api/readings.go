package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gps-tracker/internal/audit"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/mqtt"
	"github.com/nerrad567/gps-tracker/internal/reading"
)

const msgNoReadingsForDevice = "No hay registros para este dispositivo"

// fechaLayouts are tried in order. Timestamps without a zone are UTC and a
// bare date is midnight UTC.
var fechaLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// fecha accepts RFC 3339, zone-less ISO 8601 date-times and bare dates.
type fecha struct {
	time.Time
}

func (f *fecha) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("fecha must be a string: %w", err)
	}
	for _, layout := range fechaLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			f.Time = t
			return nil
		}
	}
	return fmt.Errorf("fecha %q is not an ISO 8601 date-time", s)
}

// createReadingRequest is the body of POST /api/registros/.
type createReadingRequest struct {
	Fecha         *fecha  `json:"fecha"`
	Coordenadas   *string `json:"coordenadas"`
	DispositivoID *int64  `json:"dispositivo_id"`
}

func (req createReadingRequest) toReading() (*reading.Reading, error) {
	switch {
	case req.Fecha == nil:
		return nil, errors.New("fecha is required")
	case req.Coordenadas == nil:
		return nil, errors.New("coordenadas is required")
	case req.DispositivoID == nil:
		return nil, errors.New("dispositivo_id is required")
	}
	return &reading.Reading{
		Timestamp:   req.Fecha.Time,
		Coordinates: *req.Coordenadas,
		DeviceID:    *req.DispositivoID,
	}, nil
}

// handleListReadings returns every reading in id order.
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	readings, err := s.readings.List(r.Context())
	if err != nil {
		s.internalError(w, r, "listing readings", err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// handleGetReading returns a single reading.
func (s *Server) handleGetReading(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	rd, err := s.readings.GetByID(r.Context(), id)
	if errors.Is(err, reading.ErrReadingNotFound) {
		writeNotFound(w, msgReadingNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, "getting reading", err)
		return
	}
	writeJSON(w, http.StatusOK, rd)
}

// handleListReadingsByDevice returns the readings of one device, or 404
// when it has none.
func (s *Server) handleListReadingsByDevice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	readings, err := s.readings.ListByDevice(r.Context(), id)
	if err != nil {
		s.internalError(w, r, "listing device readings", err)
		return
	}
	if len(readings) == 0 {
		writeNotFound(w, msgNoReadingsForDevice)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// handleCreateReading ingests a position report.
func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	var req createReadingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	rd, err := req.toReading()
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	err = s.readings.Create(r.Context(), rd)
	switch {
	case err == nil:
	case errors.Is(err, reading.ErrDeviceNotFound):
		writeNotFound(w, msgDeviceNotFound)
		return
	case errors.Is(err, reading.ErrInvalidReading):
		writeValidationError(w, err.Error())
		return
	default:
		s.internalError(w, r, "creating reading", err)
		return
	}

	s.recordAudit(r, audit.ActionCreate, audit.EntityRegistro, rd.ID,
		map[string]any{"dispositivo_id": rd.DeviceID})
	s.publishEvent(r, mqtt.EntityRegistro, mqtt.ActionCreated, rd)
	s.mirrorReading(r, rd)
	writeJSON(w, http.StatusOK, rd)
}
