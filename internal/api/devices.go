package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/gps-tracker/internal/audit"
	"github.com/nerrad567/gps-tracker/internal/auth"
	"github.com/nerrad567/gps-tracker/internal/device"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/mqtt"
)

// createDeviceRequest is the body of POST /api/dispositivos/.
// "name" is accepted as an alias of "nombre".
type createDeviceRequest struct {
	Nombre    *string `json:"nombre"`
	Name      *string `json:"name"`
	Active    bool    `json:"active"`
	UsuarioID *int64  `json:"usuario_id"`
}

func (req createDeviceRequest) toDevice() (*device.Device, error) {
	name := req.Nombre
	if name == nil {
		name = req.Name
	}
	if name == nil {
		return nil, errors.New("nombre is required")
	}
	if req.UsuarioID == nil {
		return nil, errors.New("usuario_id is required")
	}
	return &device.Device{Name: *name, Active: req.Active, OwnerID: *req.UsuarioID}, nil
}

// handleListDevices returns every device in id order.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.devices.List(r.Context())
	if err != nil {
		s.internalError(w, r, "listing devices", err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleListUserDevices returns the devices owned by one user. An existing
// user without devices gets an empty list; an unknown user gets 404.
func (s *Server) handleListUserDevices(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	if _, err := s.users.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			writeNotFound(w, msgUserNotFound)
			return
		}
		s.internalError(w, r, "getting user", err)
		return
	}

	devices, err := s.devices.ListByOwner(r.Context(), id)
	if err != nil {
		s.internalError(w, r, "listing user devices", err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// handleGetDevice returns a single device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	d, err := s.devices.GetByID(r.Context(), id)
	if errors.Is(err, device.ErrDeviceNotFound) {
		writeNotFound(w, msgDeviceNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, "getting device", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleCreateDevice registers a device for any existing user.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	d, err := req.toDevice()
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	err = s.devices.Create(r.Context(), d)
	switch {
	case err == nil:
	case errors.Is(err, device.ErrOwnerNotFound):
		writeNotFound(w, msgUserNotFound)
		return
	case errors.Is(err, device.ErrInvalidDevice),
		errors.Is(err, device.ErrInvalidName),
		errors.Is(err, device.ErrInvalidOwner):
		writeValidationError(w, err.Error())
		return
	default:
		s.internalError(w, r, "creating device", err)
		return
	}

	s.recordAudit(r, audit.ActionCreate, audit.EntityDispositivo, d.ID,
		map[string]any{"nombre": d.Name, "usuario_id": d.OwnerID})
	s.publishEvent(r, mqtt.EntityDispositivo, mqtt.ActionCreated, d)
	writeJSON(w, http.StatusOK, d)
}
