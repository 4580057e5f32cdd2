package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/gps-tracker/internal/infrastructure/database"
)

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	UserLookup
	Create(ctx context.Context, user *User) error
	CreateFirst(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

const userColumns = "id, username, email, password, created_at"

// SQLiteUserRepository implements UserRepository on the usuarios table.
type SQLiteUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed user repository.
func NewUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

// Create inserts a new user. user.PasswordHash must already be hashed.
// On success user.ID and user.CreatedAt are set.
func (r *SQLiteUserRepository) Create(ctx context.Context, user *User) error {
	now := time.Now().UTC().Truncate(time.Second)

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO usuarios (username, password, email, created_at) VALUES (?, ?, ?, ?)`,
		user.Username, user.PasswordHash, nullString(user.Email), now.Format(time.RFC3339),
	)
	if err != nil {
		return classifyUserWriteError(err)
	}

	return fillCreated(user, result, now)
}

// CreateFirst inserts user only if the usuarios table is empty, in a single
// statement, so two concurrent first-boot requests cannot both succeed.
// Returns ErrUsersExist when any user is already stored.
func (r *SQLiteUserRepository) CreateFirst(ctx context.Context, user *User) error {
	now := time.Now().UTC().Truncate(time.Second)

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO usuarios (username, password, email, created_at)
		 SELECT ?, ?, ?, ? WHERE NOT EXISTS (SELECT 1 FROM usuarios)`,
		user.Username, user.PasswordHash, nullString(user.Email), now.Format(time.RFC3339),
	)
	if err != nil {
		return classifyUserWriteError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("creating first user: %w", err)
	}
	if affected == 0 {
		return ErrUsersExist
	}

	return fillCreated(user, result, now)
}

// GetByID retrieves a user by numeric id.
func (r *SQLiteUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM usuarios WHERE id = ?", id))
}

// GetByUsername retrieves a user by username (exact, case-sensitive match).
func (r *SQLiteUserRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM usuarios WHERE username = ?", username))
}

// List returns all users in id order.
func (r *SQLiteUserRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM usuarios ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// Delete removes a user. Devices owned by the user and their readings go
// with it through ON DELETE CASCADE.
func (r *SQLiteUserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM usuarios WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Count returns the total number of user accounts.
func (r *SQLiteUserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usuarios").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*User, error) {
	var u User
	var email sql.NullString
	var createdAt string

	if err := s.Scan(&u.ID, &u.Username, &email, &u.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Email = email.String
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	return &u, nil
}

func fillCreated(user *User, result sql.Result, now time.Time) error {
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading user id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	return nil
}

// classifyUserWriteError maps UNIQUE failures on usuarios to the column
// that collided.
func classifyUserWriteError(err error) error {
	if database.IsUniqueViolation(err) {
		if strings.Contains(err.Error(), "usuarios.email") {
			return ErrEmailExists
		}
		return ErrUsernameExists
	}
	return fmt.Errorf("creating user: %w", err)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
