package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/nerrad567/gps-tracker/internal/infrastructure/config"
	"github.com/nerrad567/gps-tracker/internal/reading"
)

func readingBody(fecha string, dev int64) string {
	return `{"fecha":"` + fecha + `","coordenadas":"40.4168,-3.7038","dispositivo_id":` + itoa(dev) + `}`
}

func TestCreateReading(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.seedUser(t, "alice", "secret")
	dev := env.seedDevice(t, token, alice.ID)

	tests := []struct {
		name     string
		fecha    string
		wantTime time.Time
	}{
		{name: "utc", fecha: "2026-03-01T12:00:00Z", wantTime: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{name: "offset", fecha: "2026-03-01T13:00:00.25+01:00", wantTime: time.Date(2026, 3, 1, 12, 0, 0, 250_000_000, time.UTC)},
		{name: "no zone", fecha: "2026-03-01T12:00:00", wantTime: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{name: "space separator", fecha: "2026-03-01 12:00:00.5", wantTime: time.Date(2026, 3, 1, 12, 0, 0, 500_000_000, time.UTC)},
		{name: "date only", fecha: "2026-03-01", wantTime: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Ingest is open by default.
			rec := env.do(t, http.MethodPost, "/api/registros/", readingBody(tt.fecha, dev), "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
			}
			var got reading.Reading
			decode(t, rec, &got)
			if got.ID == 0 || got.DeviceID != dev || got.Coordinates != "40.4168,-3.7038" {
				t.Errorf("reading = %+v", got)
			}
			if !got.Timestamp.Equal(tt.wantTime) {
				t.Errorf("fecha = %v, want %v", got.Timestamp, tt.wantTime)
			}
		})
	}
}

func TestCreateReading_Rejections(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.seedUser(t, "alice", "secret")
	dev := env.seedDevice(t, token, alice.ID)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{name: "unknown device", body: readingBody("2026-03-01T12:00:00Z", 77), wantStatus: http.StatusNotFound, wantCode: ErrCodeNotFound, wantMsg: msgDeviceNotFound},
		{name: "missing fecha", body: `{"coordenadas":"1,2","dispositivo_id":` + itoa(dev) + `}`, wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeValidation},
		{name: "bad fecha", body: readingBody("yesterday", dev), wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeValidation},
		{name: "impossible date", body: readingBody("2026-02-30", dev), wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeValidation},
		{name: "missing coordenadas", body: `{"fecha":"2026-03-01T12:00:00Z","dispositivo_id":` + itoa(dev) + `}`, wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeValidation},
		{name: "blank coordenadas", body: `{"fecha":"2026-03-01T12:00:00Z","coordenadas":" ","dispositivo_id":` + itoa(dev) + `}`, wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeValidation},
		{name: "missing device", body: `{"fecha":"2026-03-01T12:00:00Z","coordenadas":"1,2"}`, wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/registros/", tt.body, "")
			assertError(t, rec, tt.wantStatus, tt.wantCode, tt.wantMsg)
		})
	}

	var list []reading.Reading
	decode(t, env.do(t, http.MethodGet, "/api/registros/", "", ""), &list)
	if len(list) != 0 {
		t.Errorf("rejected ingests left %d readings", len(list))
	}
}

func TestCreateReading_RequireAuth(t *testing.T) {
	env := newTestEnv(t, withSecurity(config.SecurityConfig{RegistrosRequireAuth: true}))
	alice, token := env.seedUser(t, "alice", "secret")
	dev := env.seedDevice(t, token, alice.ID)

	assertError(t, env.do(t, http.MethodPost, "/api/registros/", readingBody("2026-03-01T12:00:00Z", dev), ""),
		http.StatusUnauthorized, ErrCodeUnauthorized, "")

	if rec := env.do(t, http.MethodPost, "/api/registros/", readingBody("2026-03-01T12:00:00Z", dev), token); rec.Code != http.StatusOK {
		t.Errorf("authenticated ingest: %d %s", rec.Code, rec.Body)
	}
}

func TestReadingQueries(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.seedUser(t, "alice", "secret")
	a := env.seedDevice(t, token, alice.ID)
	b := env.seedDevice(t, token, alice.ID)
	idle := env.seedDevice(t, token, alice.ID)

	for _, dev := range []int64{a, b, a} {
		if rec := env.do(t, http.MethodPost, "/api/registros/", readingBody("2026-03-01T12:00:00Z", dev), ""); rec.Code != http.StatusOK {
			t.Fatalf("seeding reading: %d %s", rec.Code, rec.Body)
		}
	}

	var all []reading.Reading
	decode(t, env.do(t, http.MethodGet, "/api/registros/", "", ""), &all)
	if len(all) != 3 {
		t.Errorf("list returned %d readings, want 3", len(all))
	}

	var one reading.Reading
	decode(t, env.do(t, http.MethodGet, "/api/registros/2", "", ""), &one)
	if one.ID != 2 || one.DeviceID != b {
		t.Errorf("get = %+v", one)
	}

	var forA []reading.Reading
	decode(t, env.do(t, http.MethodGet, "/api/registros/dispositivo/"+itoa(a), "", ""), &forA)
	if len(forA) != 2 || forA[0].ID != 1 || forA[1].ID != 3 {
		t.Errorf("by device = %+v", forA)
	}

	assertError(t, env.do(t, http.MethodGet, "/api/registros/dispositivo/"+itoa(idle), "", ""),
		http.StatusNotFound, ErrCodeNotFound, msgNoReadingsForDevice)
	assertError(t, env.do(t, http.MethodGet, "/api/registros/dispositivo/999", "", ""),
		http.StatusNotFound, ErrCodeNotFound, msgNoReadingsForDevice)
	assertError(t, env.do(t, http.MethodGet, "/api/registros/42", "", ""),
		http.StatusNotFound, ErrCodeNotFound, msgReadingNotFound)
	assertError(t, env.do(t, http.MethodGet, "/api/registros/dispositivo/abc", "", ""),
		http.StatusUnprocessableEntity, ErrCodeValidation, "")
}
