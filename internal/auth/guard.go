package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// bearerScheme is the only Authorization scheme accepted.
const bearerScheme = "bearer"

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
}

// Guard turns an Authorization header into the user it names.
type Guard struct {
	tokens *TokenService
	users  UserLookup
}

// NewGuard creates a Guard that validates with tokens and resolves
// subjects through users.
func NewGuard(tokens *TokenService, users UserLookup) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Authenticate resolves the Authorization header value to a user.
//
// A missing header, a scheme other than Bearer, or a token that fails
// validation yields ErrUnauthorized. A valid token whose subject no longer
// exists yields ErrUserNotFound.
func (g *Guard) Authenticate(ctx context.Context, authorization string) (*User, error) {
	token, ok := BearerToken(authorization)
	if !ok {
		return nil, fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}

	subject, err := g.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	user, err := g.users.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("resolving token subject: %w", err)
	}
	return user, nil
}

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively.
func BearerToken(authorization string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CheckCredentials verifies a username and password pair. Unknown users
// and wrong passwords both return ErrInvalidCredentials, and both pay for
// one bcrypt comparison so response timing does not reveal which.
func CheckCredentials(ctx context.Context, users UserLookup, username, password string) (*User, error) {
	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			VerifyPassword(password, dummyHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

var dummyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("not-a-real-password")
	if err != nil {
		return ""
	}
	return hash
})

type contextKey struct{}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// UserFromContext returns the authenticated user stored by WithUser.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(contextKey{}).(*User)
	return user, ok && user != nil
}
