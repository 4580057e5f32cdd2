package auth

import (
	"io"
	"log/slog"
	"testing"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeedUser_GeneratesPasswordOnEmptyDB(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := t.Context()

	password, err := SeedUser(ctx, repo, BootstrapUser{Username: "admin"}, quietLogger())
	if err != nil {
		t.Fatalf("SeedUser() error = %v", err)
	}
	if password == "" {
		t.Fatal("SeedUser() should return the generated password")
	}

	user, err := repo.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetByUsername(admin) error = %v", err)
	}
	if !VerifyPassword(password, user.PasswordHash) {
		t.Error("generated password should verify against stored hash")
	}
}

func TestSeedUser_ConfiguredPassword(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := t.Context()

	generated, err := SeedUser(ctx, repo, BootstrapUser{
		Username: "admin",
		Password: "configured-pass",
		Email:    "admin@example.com",
	}, quietLogger())
	if err != nil {
		t.Fatalf("SeedUser() error = %v", err)
	}
	if generated != "" {
		t.Error("no password should be generated when one is configured")
	}

	user, err := repo.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "admin@example.com" || !VerifyPassword("configured-pass", user.PasswordHash) {
		t.Errorf("seeded user = %+v", user)
	}
}

func TestSeedUser_SkipsWhenUsersExist(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := t.Context()

	seedTestUser(t, db, "existing")

	password, err := SeedUser(ctx, repo, BootstrapUser{Username: "admin"}, quietLogger())
	if err != nil {
		t.Fatalf("SeedUser() error = %v", err)
	}
	if password != "" {
		t.Error("SeedUser() should return empty password when users exist")
	}

	if count, _ := repo.Count(ctx); count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestSeedUser_DisabledWithoutUsername(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	if _, err := SeedUser(t.Context(), repo, BootstrapUser{}, quietLogger()); err != nil {
		t.Fatalf("SeedUser() error = %v", err)
	}
	if count, _ := repo.Count(t.Context()); count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}

func TestSeedUser_InvalidBootstrap(t *testing.T) {
	repo := NewUserRepository(testDB(t))

	_, err := SeedUser(t.Context(), repo, BootstrapUser{Username: "bad name", Password: "pw"}, quietLogger())
	if err == nil {
		t.Fatal("SeedUser() with invalid username should fail")
	}
}

func TestSeedUser_UniquePasswords(t *testing.T) {
	pw1, err := SeedUser(t.Context(), NewUserRepository(testDB(t)), BootstrapUser{Username: "admin"}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	pw2, err := SeedUser(t.Context(), NewUserRepository(testDB(t)), BootstrapUser{Username: "admin"}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if pw1 == pw2 {
		t.Error("generated passwords should differ between runs")
	}
}
