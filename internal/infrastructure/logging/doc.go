// Package logging provides structured logging for the tracker service.
//
// It wraps log/slog so every component logs the same way: JSON in
// production, text for local development, with service and version
// attached to every entry.
//
// Configuration lives in the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("starting service", "port", 8000)
//	logger.Error("failed to open database", "error", err)
//
// Attributes named password, token, access_token, secret or
// authorization are redacted by the handler. Do not rely on that as the
// only guard: never pass credentials to a logger in the first place.
package logging
