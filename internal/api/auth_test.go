package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/nerrad567/gps-tracker/internal/auth"
)

func TestToken_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", "secret")

	rec := env.do(t, http.MethodPost, "/token", `{"username":"alice","password":"secret"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp tokenResponse
	decode(t, rec, &resp)
	if resp.AccessToken == "" || resp.TokenType != "bearer" || resp.ExpiresIn != 1800 {
		t.Errorf("response = %+v", resp)
	}
	subject, err := env.tokens.Validate(resp.AccessToken)
	if err != nil || subject != "alice" {
		t.Errorf("Validate(issued) = %q, %v", subject, err)
	}
}

func TestToken_Form(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", "secret")

	form := url.Values{"username": {"alice"}, "password": {"secret"}, "grant_type": {"password"}}
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp tokenResponse
	decode(t, rec, &resp)
	if resp.AccessToken == "" {
		t.Error("empty access token")
	}
}

func TestToken_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", "secret")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "wrong password", body: `{"username":"alice","password":"nope"}`, wantStatus: http.StatusUnauthorized, wantCode: ErrCodeUnauthorized},
		{name: "unknown user", body: `{"username":"bob","password":"secret"}`, wantStatus: http.StatusUnauthorized, wantCode: ErrCodeUnauthorized},
		{name: "missing password", body: `{"username":"alice"}`, wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeValidation},
		{name: "empty body", body: "", wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeValidation},
		{name: "malformed", body: `{"username":`, wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeValidation},
		{name: "wrong type", body: `{"username":1,"password":"x"}`, wantStatus: http.StatusUnprocessableEntity, wantCode: ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/token", tt.body, "")
			assertError(t, rec, tt.wantStatus, tt.wantCode, "")
			if tt.wantStatus == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("401 should carry WWW-Authenticate: Bearer")
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.seedUser(t, "alice", "secret")
	bob, bobToken := env.seedUser(t, "bob", "secret")

	// bob's token outlives bob.
	rec := env.do(t, http.MethodDelete, "/api/usuarios/"+itoa(bob.ID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("deleting bob: %d %s", rec.Code, rec.Body)
	}

	other, err := auth.NewTokenService(auth.TokenConfig{Secret: "another-secret-key-at-least-32-characters"})
	if err != nil {
		t.Fatal(err)
	}
	forged, err := other.IssueDefault("alice")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{name: "no header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not.a.token", wantStatus: http.StatusUnauthorized},
		{name: "foreign signature", header: "Bearer " + forged, wantStatus: http.StatusUnauthorized},
		{name: "deleted user", header: "Bearer " + bobToken, wantStatus: http.StatusNotFound, wantMsg: msgUserNotFound},
		{name: "valid", header: "Bearer " + token, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auditoria/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			env.handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			if tt.wantMsg != "" {
				assertError(t, rec, tt.wantStatus, ErrCodeNotFound, tt.wantMsg)
			}
		})
	}
}
