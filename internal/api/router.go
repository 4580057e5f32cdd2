package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware())
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "Method Not Allowed")
	})

	r.Get("/", s.handleRoot)
	r.Post("/token", s.handleToken)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/usuarios", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			// Authenticates inline: open while no users exist.
			r.Post("/", s.handleCreateUser)
			r.Get("/{id}", s.handleGetUser)
			r.Get("/{id}/dispositivos", s.handleListUserDevices)
			r.With(s.authMiddleware).Delete("/{id}", s.handleDeleteUser)
		})

		r.Route("/dispositivos", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.With(s.authMiddleware).Post("/", s.handleCreateDevice)
			r.Get("/{id}", s.handleGetDevice)
		})

		r.Route("/registros", func(r chi.Router) {
			r.Get("/", s.handleListReadings)
			if s.secCfg.RegistrosRequireAuth {
				r.With(s.authMiddleware).Post("/", s.handleCreateReading)
			} else {
				r.Post("/", s.handleCreateReading)
			}
			r.Get("/{id}", s.handleGetReading)
			r.Get("/dispositivo/{id}", s.handleListReadingsByDevice)
		})

		r.Route("/auditoria", func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/", s.handleListAudit)
		})
	})

	return r
}
