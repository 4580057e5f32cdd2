package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
)

// seedPasswordBytes is the number of random bytes for a generated password.
const seedPasswordBytes = 16

// BootstrapUser describes the account created on first boot.
type BootstrapUser struct {
	Username string
	Password string
	Email    string
}

// SeedUser creates the bootstrap account when the store holds no users.
//
// Seeding is skipped when bootstrap.Username is empty or users already exist.
// When bootstrap.Password is empty a random one is generated and returned so the
// caller can show it to the operator once; it is never logged. The returned
// string is empty whenever no password was generated.
func SeedUser(ctx context.Context, users UserRepository, bootstrap BootstrapUser, logger *slog.Logger) (string, error) {
	if bootstrap.Username == "" {
		return "", nil
	}

	count, err := users.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking user count: %w", err)
	}
	if count > 0 {
		logger.Info("users exist, skipping bootstrap user")
		return "", nil
	}

	password := bootstrap.Password
	generated := ""
	if password == "" {
		b := make([]byte, seedPasswordBytes)
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("generating bootstrap password: %w", err)
		}
		password = hex.EncodeToString(b)
		generated = password
	}

	input := NewUser{Username: bootstrap.Username, Password: password, Email: bootstrap.Email}
	if err := input.Validate(); err != nil {
		return "", fmt.Errorf("bootstrap user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing bootstrap password: %w", err)
	}

	user := &User{Username: bootstrap.Username, Email: bootstrap.Email, PasswordHash: hash}
	if err := users.CreateFirst(ctx, user); err != nil {
		if errors.Is(err, ErrUsersExist) {
			logger.Info("users exist, skipping bootstrap user")
			return "", nil
		}
		return "", fmt.Errorf("creating bootstrap user: %w", err)
	}

	logger.Warn("bootstrap user created",
		"username", user.Username,
		"id", user.ID,
		"generated_password", generated != "",
	)
	return generated, nil
}
