package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gps-tracker/internal/audit"
	"github.com/nerrad567/gps-tracker/internal/auth"
	"github.com/nerrad567/gps-tracker/internal/device"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/config"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/logging"
	"github.com/nerrad567/gps-tracker/internal/reading"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is implemented by the database handle.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Security config.SecurityConfig
	Logger   *logging.Logger
	DB       HealthChecker
	Tokens   *auth.TokenService
	Users    auth.UserRepository
	Devices  device.Repository
	Readings reading.Repository
	Audit    audit.Repository // optional

	// Events and Mirror are optional outbound integrations. Leave them nil
	// when disabled; a typed nil pointer is not treated as absent.
	Events EventPublisher
	Mirror ReadingMirror

	Version string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg      config.APIConfig
	secCfg   config.SecurityConfig
	logger   *logging.Logger
	db       HealthChecker
	tokens   *auth.TokenService
	guard    *auth.Guard
	users    auth.UserRepository
	devices  device.Repository
	readings reading.Repository
	audit    audit.Repository
	events   EventPublisher
	mirror   ReadingMirror
	version  string
	server   *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, errors.New("logger is required")
	case deps.Tokens == nil:
		return nil, errors.New("token service is required")
	case deps.Users == nil:
		return nil, errors.New("user repository is required")
	case deps.Devices == nil:
		return nil, errors.New("device repository is required")
	case deps.Readings == nil:
		return nil, errors.New("reading repository is required")
	}

	return &Server{
		cfg:      deps.Config,
		secCfg:   deps.Security,
		logger:   deps.Logger,
		db:       deps.DB,
		tokens:   deps.Tokens,
		guard:    auth.NewGuard(deps.Tokens, deps.Users),
		users:    deps.Users,
		devices:  deps.Devices,
		readings: deps.Readings,
		audit:    deps.Audit,
		events:   deps.Events,
		mirror:   deps.Mirror,
		version:  deps.Version,
	}, nil
}

// Handler returns the fully wired router. Start uses it for the listener;
// tests drive it directly.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return errors.New("api server not started")
	}
	return nil
}
