package database

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen(t *testing.T) {
	t.Run("creates database file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "test.db")

		db, err := Open(t.Context(), Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
		}
	})

	t.Run("creates directory if not exists", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

		db, err := Open(t.Context(), Config{Path: dbPath, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
			t.Error("database directory was not created")
		}
	})

	t.Run("rejects empty path", func(t *testing.T) {
		if _, err := Open(t.Context(), Config{}); err == nil {
			t.Error("Open() with empty path should fail")
		}
	})

	t.Run("enforces foreign keys", func(t *testing.T) {
		db := openTestDB(t)
		var enabled int
		if err := db.QueryRowContext(t.Context(), "PRAGMA foreign_keys").Scan(&enabled); err != nil {
			t.Fatalf("PRAGMA foreign_keys: %v", err)
		}
		if enabled != 1 {
			t.Errorf("foreign_keys = %d, want 1", enabled)
		}
	})
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(t.Context()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := db.DB.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}
	if err := db.HealthCheck(t.Context()); err == nil {
		t.Error("HealthCheck() on closed database should fail")
	}
}

func TestClose_Nil(t *testing.T) {
	var db *DB
	if err := db.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}
}

func TestPoolSize(t *testing.T) {
	db := openTestDB(t)
	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %v, want 1", got)
	}
}

func TestWithTx(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	if _, err := db.MigrateFrom(ctx, testSource()); err != nil {
		t.Fatalf("MigrateFrom() error = %v", err)
	}

	t.Run("commits on success", func(t *testing.T) {
		err := WithTx(ctx, db.DB, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO test_owners (username) VALUES ('alice')")
			return err
		})
		if err != nil {
			t.Fatalf("WithTx() error = %v", err)
		}
		if n := countRows(t, db, "test_owners"); n != 1 {
			t.Errorf("rows = %d, want 1", n)
		}
	})

	t.Run("rolls back on error", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := WithTx(ctx, db.DB, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO test_owners (username) VALUES ('bob')"); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("WithTx() error = %v, want sentinel", err)
		}
		if n := countRows(t, db, "test_owners"); n != 1 {
			t.Errorf("rows = %d, want 1 (bob rolled back)", n)
		}
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		func() {
			defer func() { _ = recover() }()
			_ = WithTx(ctx, db.DB, func(tx *sql.Tx) error {
				if _, err := tx.ExecContext(ctx, "INSERT INTO test_owners (username) VALUES ('carol')"); err != nil {
					return err
				}
				panic("handler bug")
			})
		}()
		if n := countRows(t, db, "test_owners"); n != 1 {
			t.Errorf("rows = %d, want 1 (carol rolled back)", n)
		}
	})
}

func TestConstraintClassification(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	if _, err := db.MigrateFrom(ctx, testSource()); err != nil {
		t.Fatalf("MigrateFrom() error = %v", err)
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO test_owners (username) VALUES ('dup')"); err != nil {
		t.Fatalf("seed insert: %v", err)
	}

	_, err := db.ExecContext(ctx, "INSERT INTO test_owners (username) VALUES ('dup')")
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}
	if IsForeignKeyViolation(err) {
		t.Errorf("IsForeignKeyViolation(%v) = true for unique failure", err)
	}

	_, err = db.ExecContext(ctx, "INSERT INTO test_devices (owner_id) VALUES (999)")
	if !IsForeignKeyViolation(err) {
		t.Errorf("IsForeignKeyViolation(%v) = false, want true", err)
	}
	if IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = true for foreign key failure", err)
	}

	if IsUniqueViolation(nil) || IsForeignKeyViolation(errors.New("UNIQUE constraint failed")) {
		t.Error("non-sqlite errors must not classify as constraint failures")
	}
}

func TestCascadeDelete(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	if _, err := db.MigrateFrom(ctx, testSource()); err != nil {
		t.Fatalf("MigrateFrom() error = %v", err)
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO test_owners (id, username) VALUES (1, 'owner')"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO test_devices (owner_id) VALUES (1), (1)"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM test_owners WHERE id = 1"); err != nil {
		t.Fatal(err)
	}
	if n := countRows(t, db, "test_devices"); n != 0 {
		t.Errorf("test_devices rows = %d after owner delete, want 0", n)
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(t.Context(), Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	return db
}

func countRows(t *testing.T, db *DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRowContext(t.Context(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}
