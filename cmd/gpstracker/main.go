// GPS Tracker - device position tracking backend
//
// This is the main entry point for the tracker service. It exposes a REST
// API for users, GPS devices and the position readings those devices
// report, backed by SQLite, with optional MQTT event publishing and an
// optional InfluxDB mirror of incoming readings.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gps-tracker/migrations"

	"github.com/nerrad567/gps-tracker/internal/api"
	"github.com/nerrad567/gps-tracker/internal/audit"
	"github.com/nerrad567/gps-tracker/internal/auth"
	"github.com/nerrad567/gps-tracker/internal/device"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/config"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/database"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/influxdb"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/logging"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/mqtt"
	"github.com/nerrad567/gps-tracker/internal/reading"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// configPathEnv overrides defaultConfigPath.
const configPathEnv = config.EnvPrefix + "CONFIG"

func main() {
	// Cancelled on Ctrl+C or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It blocks until ctx is cancelled and returns nil on a clean shutdown.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting GPS tracker",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	applied, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete", "applied", applied)

	users := auth.NewUserRepository(db.DB)
	if err := seedBootstrapUser(ctx, cfg, users, log); err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     cfg.Security.JWT.Secret,
		Algorithm:  cfg.Security.JWT.Algorithm,
		DefaultTTL: cfg.GetAccessTokenTTL(),
	})
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	deps := api.Deps{
		Config:   cfg.API,
		Security: cfg.Security,
		Logger:   log,
		DB:       db,
		Tokens:   tokens,
		Users:    users,
		Devices:  device.NewSQLiteRepository(db.DB),
		Readings: reading.NewSQLiteRepository(db.DB),
		Audit:    audit.NewSQLiteRepository(db.DB),
		Version:  version,
	}

	// MQTT and InfluxDB are optional. A broker or database that is down at
	// startup is logged and the API runs without it.
	if mqttClient := connectMQTT(cfg, log); mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		deps.Events = mqttClient
	}

	if influxClient := connectInfluxDB(cfg, log); influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		deps.Mirror = influxClient
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: database: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if connected)
	// 3. MQTT (if connected)
	// 4. Database

	log.Info("GPS tracker stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GPSTRACKER_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv(configPathEnv); path != "" {
		return path
	}
	return defaultConfigPath
}

// seedBootstrapUser creates the configured first account on an empty
// database. A generated password goes to stderr, never to the log.
func seedBootstrapUser(ctx context.Context, cfg *config.Config, users auth.UserRepository, log *logging.Logger) error {
	bootstrap := cfg.Security.Bootstrap
	generated, err := auth.SeedUser(ctx, users, auth.BootstrapUser{
		Username: bootstrap.Username,
		Password: bootstrap.Password,
		Email:    bootstrap.Email,
	}, log.Logger)
	if err != nil {
		return fmt.Errorf("seeding bootstrap user: %w", err)
	}
	if generated != "" {
		fmt.Fprintf(os.Stderr, "Bootstrap user %q created with password: %s\n", bootstrap.Username, generated)
	}
	return nil
}

// connectMQTT returns a connected event publisher, or nil when MQTT is
// disabled or the broker cannot be reached.
func connectMQTT(cfg *config.Config, log *logging.Logger) *mqtt.Client {
	if !cfg.MQTT.Enabled {
		log.Info("MQTT disabled")
		return nil
	}

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		log.Warn("MQTT unavailable, events will not be published",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"error", err,
		)
		return nil
	}
	client.SetLogger(log.Logger)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
		"topic_prefix", client.Topics().Prefix(),
	)
	return client
}

// connectInfluxDB returns a connected reading mirror, or nil when InfluxDB
// is disabled or unreachable.
func connectInfluxDB(cfg *config.Config, log *logging.Logger) *influxdb.Client {
	client, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
		return nil
	case err != nil:
		log.Warn("InfluxDB unavailable, readings will not be mirrored",
			"url", cfg.InfluxDB.URL,
			"error", err,
		)
		return nil
	}
	log.Info("InfluxDB connected",
		"url", cfg.InfluxDB.URL,
		"org", cfg.InfluxDB.Org,
		"bucket", cfg.InfluxDB.Bucket,
	)
	return client
}
