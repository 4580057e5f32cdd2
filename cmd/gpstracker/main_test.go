package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gps-tracker/internal/auth"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/config"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/database"
	"github.com/nerrad567/gps-tracker/internal/infrastructure/logging"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

// writeConfig writes a minimal config using dbPath and port and points
// GPSTRACKER_CONFIG at it.
func writeConfig(t *testing.T, dbPath string, port int) {
	t.Helper()

	content := fmt.Sprintf(`
database:
  path: %q
  wal_mode: true
  busy_timeout: 5

api:
  host: "127.0.0.1"
  port: %d

security:
  jwt:
    secret: %q
  bootstrap:
    username: "admin"
    password: "admin-password"

logging:
  level: error
  format: text
  output: stderr
`, dbPath, port, testSecret)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(config.EnvPrefix+"ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

// freePort asks the kernel for an unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close() //nolint:errcheck // Test cleanup
	return l.Addr().(*net.TCPAddr).Port
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv(configPathEnv, "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv(configPathEnv, "/custom/path/config.yaml")
	if got := getConfigPath(); got != "/custom/path/config.yaml" {
		t.Errorf("getConfigPath() = %q, want override", got)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv(configPathEnv, "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestRun_MissingDatabasePath(t *testing.T) {
	writeConfig(t, "", freePort(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with empty database path")
	}
}

func TestRun_StartupAndShutdown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tracker.db")
	writeConfig(t, dbPath, freePort(t))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	// The configured bootstrap account was seeded on the empty database.
	db, err := database.Open(context.Background(), database.Config{Path: dbPath, BusyTimeout: 5})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	user, err := auth.NewUserRepository(db.DB).GetByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("bootstrap user not stored: %v", err)
	}
	if !auth.VerifyPassword("admin-password", user.PasswordHash) {
		t.Error("bootstrap password does not verify")
	}
}

func TestConnectIntegrations_Disabled(t *testing.T) {
	cfg := &config.Config{}
	var buf bytes.Buffer
	log := logging.NewWithWriter(config.LoggingConfig{Level: "info", Format: "text"}, "test", &buf)

	if c := connectMQTT(cfg, log); c != nil {
		t.Error("connectMQTT() should return nil when disabled")
	}
	if c := connectInfluxDB(cfg, log); c != nil {
		t.Error("connectInfluxDB() should return nil when disabled")
	}
	if !bytes.Contains(buf.Bytes(), []byte("MQTT disabled")) || !bytes.Contains(buf.Bytes(), []byte("InfluxDB disabled")) {
		t.Errorf("log output = %s", buf.String())
	}
}

func TestConnectInfluxDB_UnreachableIsNotFatal(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a closed port")
	}

	cfg := &config.Config{InfluxDB: config.InfluxDBConfig{
		Enabled: true,
		URL:     fmt.Sprintf("http://127.0.0.1:%d", freePort(t)),
		Org:     "o",
		Bucket:  "b",
	}}
	if c := connectInfluxDB(cfg, logging.Discard()); c != nil {
		t.Error("connectInfluxDB() should return nil for an unreachable server")
	}
}
