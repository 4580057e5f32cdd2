// Package api implements the tracker's HTTP REST API.
//
// This package provides:
//   - The login endpoint issuing bearer tokens (POST /token)
//   - REST endpoints for usuarios, dispositivos and registros
//   - A read-only view of the audit trail
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//   - TLS support for production deployments
//
// # Security
//
// Mutating routes require an Authorization: Bearer header validated by
// auth.Guard. Reading ingestion is open by default because trackers post
// positions without a user session; security.registros_require_auth closes
// it. While the user table is empty, POST /api/usuarios/ is open so the
// first account can be registered.
//
// # Graceful Degradation
//
// MQTT events and the InfluxDB mirror are optional. When either is
// configured but failing, the request still succeeds and the failure is
// logged.
package api
