package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// fixedClock returns a clock pinned to *at.
func fixedClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TokenConfig
		wantErr bool
		wantTTL time.Duration
	}{
		{name: "defaults", cfg: TokenConfig{Secret: testSecret}, wantTTL: 30 * time.Minute},
		{name: "custom ttl", cfg: TokenConfig{Secret: testSecret, DefaultTTL: time.Hour}, wantTTL: time.Hour},
		{name: "HS512", cfg: TokenConfig{Secret: testSecret, Algorithm: "HS512"}, wantTTL: 30 * time.Minute},
		{name: "missing secret", cfg: TokenConfig{}, wantErr: true},
		{name: "asymmetric algorithm", cfg: TokenConfig{Secret: testSecret, Algorithm: "RS256"}, wantErr: true},
		{name: "none algorithm", cfg: TokenConfig{Secret: testSecret, Algorithm: "none"}, wantErr: true},
		{name: "unknown algorithm", cfg: TokenConfig{Secret: testSecret, Algorithm: "HS999"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewTokenService(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTokenService() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && svc.DefaultTTL() != tt.wantTTL {
				t.Errorf("DefaultTTL() = %v, want %v", svc.DefaultTTL(), tt.wantTTL)
			}
		})
	}
}

func TestIssueAndValidate(t *testing.T) {
	svc := testTokenService(t)

	token, err := svc.IssueDefault("alice")
	if err != nil {
		t.Fatalf("IssueDefault() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("token %q is not a three-segment JWT", token)
	}

	subject, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if subject != "alice" {
		t.Errorf("subject = %q, want alice", subject)
	}
}

func TestIssue_DistinctTokens(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := testTokenService(t, WithClock(fixedClock(&now)))

	a, err := svc.Issue("alice", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.Issue("alice", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("tokens issued in the same second should still differ (jti)")
	}
}

func TestIssue_EmptySubject(t *testing.T) {
	svc := testTokenService(t)
	if _, err := svc.Issue("", time.Minute); err == nil {
		t.Error("Issue() with empty subject should fail")
	}
}

func TestValidate_Expiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	svc := testTokenService(t, WithClock(fixedClock(&now)))

	token, err := svc.IssueDefault("alice")
	if err != nil {
		t.Fatalf("IssueDefault() error = %v", err)
	}

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{name: "just issued", at: issued},
		{name: "one second before expiry", at: issued.Add(30*time.Minute - time.Second)},
		{name: "at expiry instant", at: issued.Add(30 * time.Minute), wantErr: ErrTokenExpired},
		{name: "after expiry", at: issued.Add(31 * time.Minute), wantErr: ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now = tt.at
			subject, err := svc.Validate(token)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				if subject != "alice" {
					t.Errorf("subject = %q, want alice", subject)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrTokenInvalid) {
				t.Error("expired token error should also match ErrTokenInvalid")
			}
		})
	}
}

func TestIssue_NonPositiveTTL(t *testing.T) {
	svc := testTokenService(t)

	for _, ttl := range []time.Duration{0, -time.Minute} {
		token, err := svc.Issue("alice", ttl)
		if err != nil {
			t.Fatalf("Issue(ttl=%v) error = %v", ttl, err)
		}
		if _, err := svc.Validate(token); !errors.Is(err, ErrTokenExpired) {
			t.Errorf("Validate(ttl=%v) error = %v, want ErrTokenExpired", ttl, err)
		}
	}
}

func TestValidate_Rejects(t *testing.T) {
	svc := testTokenService(t)
	good, err := svc.IssueDefault("alice")
	if err != nil {
		t.Fatal(err)
	}

	otherKey, err := NewTokenService(TokenConfig{Secret: "another-secret-that-is-32-chars-long"})
	if err != nil {
		t.Fatal(err)
	}
	wrongSecret, err := otherKey.IssueDefault("alice")
	if err != nil {
		t.Fatal(err)
	}

	otherAlg, err := NewTokenService(TokenConfig{Secret: testSecret, Algorithm: "HS512"})
	if err != nil {
		t.Fatal(err)
	}
	wrongAlg, err := otherAlg.IssueDefault("alice")
	if err != nil {
		t.Fatal(err)
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "alice",
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	parts := strings.Split(good, ".")
	tamperedSig := parts[0] + "." + parts[1] + "." + flipFirst(parts[2])
	tamperedPayload := parts[0] + "." + flipFirst(parts[1]) + "." + parts[2]

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-token"},
		{name: "two segments", token: parts[0] + "." + parts[1]},
		{name: "tampered signature", token: tamperedSig},
		{name: "tampered payload", token: tamperedPayload},
		{name: "wrong secret", token: wrongSecret},
		{name: "wrong algorithm", token: wrongAlg},
		{name: "alg none", token: noneToken},
		{name: "missing subject", token: noSubject},
		{name: "missing expiry", token: noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := svc.Validate(tt.token)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Fatalf("Validate() error = %v, want ErrTokenInvalid", err)
			}
			if subject != "" {
				t.Errorf("subject = %q on failure, want empty", subject)
			}
		})
	}
}

// flipFirst swaps the first base64url character of a segment for a
// different one, which always changes the decoded bytes.
func flipFirst(segment string) string {
	replacement := byte('A')
	if segment[0] == 'A' {
		replacement = 'B'
	}
	return string(replacement) + segment[1:]
}
