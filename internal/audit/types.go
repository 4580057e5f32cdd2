// Package audit records and queries the trail of mutations made through
// the API.
package audit

import "time"

// Actions recorded by the API.
const (
	ActionCreate = "create"
	ActionDelete = "delete"
)

// Entity types recorded by the API.
const (
	EntityUsuario     = "usuario"
	EntityDispositivo = "dispositivo"
	EntityRegistro    = "registro"
)

// Page size bounds for List.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Entry is a single audit trail record.
type Entry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	Actor      string         `json:"actor,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Filter controls which entries List returns.
type Filter struct {
	Action     string // optional: create, delete
	EntityType string // optional: usuario, dispositivo, registro
	EntityID   string
	Limit      int // default 50, max 200
	Offset     int
}

// ListResult is one page of entries plus the total matching the filter.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

func (f *Filter) normalise() {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
