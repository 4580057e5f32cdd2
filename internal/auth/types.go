package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
// Usernames are restricted on purpose: they become the token subject and
// are written to logs and audit entries verbatim.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// maxEmailLength is the longest address accepted (RFC 5321 path limit).
const maxEmailLength = 254

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// IsValidEmail performs a shallow shape check. The address is only stored,
// never mailed, so deliverability is not verified.
func IsValidEmail(email string) bool {
	if len(email) > maxEmailLength || strings.ContainsAny(email, " \t\r\n") {
		return false
	}
	local, domain, ok := strings.Cut(email, "@")
	return ok && local != "" && domain != "" && !strings.Contains(domain, "@")
}

// User is an account that owns devices and may authenticate.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // never serialised
	CreatedAt    time.Time `json:"-"`
}

// NewUser is the input for account creation. Password is plaintext and is
// hashed before it reaches storage.
type NewUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// Validate checks all fields and reports every problem at once.
func (n NewUser) Validate() error {
	var errs []error
	if n.Username == "" {
		errs = append(errs, fmt.Errorf("%w: username is required", ErrValidation))
	} else if !IsValidUsername(n.Username) {
		errs = append(errs, fmt.Errorf("%w: username must be 1-64 characters of letters, digits, '.', '-' or '_'", ErrValidation))
	}
	if err := ValidatePassword(n.Password); err != nil {
		errs = append(errs, err)
	}
	if n.Email != "" && !IsValidEmail(n.Email) {
		errs = append(errs, fmt.Errorf("%w: email is not a valid address", ErrValidation))
	}
	return errors.Join(errs...)
}

// Sentinel errors for auth operations.
var (
	// ErrValidation marks input rejected before it reaches storage.
	ErrValidation = errors.New("validation failed")

	ErrPasswordRequired = fmt.Errorf("%w: password is required", ErrValidation)
	ErrPasswordTooLong  = fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, maxPasswordBytes)

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("not authenticated")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already registered")
	ErrUsersExist         = errors.New("users already exist")

	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired also matches ErrTokenInvalid with errors.Is.
	ErrTokenExpired = fmt.Errorf("%w: token has expired", ErrTokenInvalid)
)
