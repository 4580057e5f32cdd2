package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/gps-tracker/internal/audit"
	"github.com/nerrad567/gps-tracker/internal/auth"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/mqtt"
)

// handleListUsers returns every user in id order.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.internalError(w, r, "listing users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// handleGetUser returns a single user.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	user, err := s.users.GetByID(r.Context(), id)
	if errors.Is(err, auth.ErrUserNotFound) {
		writeNotFound(w, msgUserNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, "getting user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleCreateUser registers an account. A bearer token is required unless
// the user table is empty, in which case the first account is created
// atomically. This open window is deliberate: it is how a deployment
// without a configured bootstrap user gets its first account, and it
// closes as soon as one user exists.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	first := false
	if actor, err := s.guard.Authenticate(ctx, r.Header.Get("Authorization")); err == nil {
		r = r.WithContext(auth.WithUser(ctx, actor))
	} else {
		n, countErr := s.users.Count(ctx)
		if countErr != nil {
			s.internalError(w, r, "counting users", countErr)
			return
		}
		if n > 0 {
			s.writeAuthError(w, r, err)
			return
		}
		first = true
	}

	var req auth.NewUser
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.internalError(w, r, "hashing password", err)
		return
	}

	user := &auth.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	if first {
		err = s.users.CreateFirst(r.Context(), user)
	} else {
		err = s.users.Create(r.Context(), user)
	}
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrUsersExist):
		// Another request registered the first account in the meantime.
		writeUnauthorized(w, "Could not validate credentials")
		return
	case errors.Is(err, auth.ErrUsernameExists):
		writeConflict(w, "Username already registered")
		return
	case errors.Is(err, auth.ErrEmailExists):
		writeConflict(w, "Email already registered")
		return
	default:
		s.internalError(w, r, "creating user", err)
		return
	}

	if first {
		s.logger.Info("first user registered", "username", user.Username)
	}
	s.recordAudit(r, audit.ActionCreate, audit.EntityUsuario, user.ID, map[string]any{"username": user.Username})
	s.publishEvent(r, mqtt.EntityUsuario, mqtt.ActionCreated, user)
	writeJSON(w, http.StatusOK, user)
}

// handleDeleteUser removes a user together with its devices and readings.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	err = s.users.Delete(r.Context(), id)
	if errors.Is(err, auth.ErrUserNotFound) {
		writeNotFound(w, msgUserNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, "deleting user", err)
		return
	}

	s.recordAudit(r, audit.ActionDelete, audit.EntityUsuario, id, nil)
	s.publishEvent(r, mqtt.EntityUsuario, mqtt.ActionDeleted, map[string]int64{"id": id})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Usuario eliminado"})
}
