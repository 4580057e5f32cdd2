package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gps-tracker/internal/infrastructure/database"
)

// Repository defines the interface for device persistence operations.
type Repository interface {
	// Create validates and inserts a device, setting its ID.
	// Returns ErrOwnerNotFound if the owner does not exist.
	Create(ctx context.Context, device *Device) error

	// GetByID retrieves a device by its identifier.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByID(ctx context.Context, id int64) (*Device, error)

	// List retrieves all devices in id order.
	List(ctx context.Context) ([]Device, error)

	// ListByOwner retrieves the devices of one user in id order.
	ListByOwner(ctx context.Context, ownerID int64) ([]Device, error)
}

const deviceColumns = "id, nombre, active, usuario_id, created_at"

// SQLiteRepository implements Repository on the dispositivos table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed device repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create validates d, checks its owner and inserts it in one transaction.
// Nothing is written when the owner is missing.
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	if err := ValidateDevice(d); err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Second)

	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM usuarios WHERE id = ?", d.OwnerID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOwnerNotFound
		}
		if err != nil {
			return fmt.Errorf("checking owner: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO dispositivos (nombre, active, usuario_id, created_at) VALUES (?, ?, ?, ?)`,
			d.Name, boolToInt(d.Active), d.OwnerID, now.Format(time.RFC3339),
		)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return ErrOwnerNotFound
			}
			return fmt.Errorf("inserting device: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading device id: %w", err)
		}
		d.ID = id
		return nil
	})
	if err != nil {
		d.ID = 0
		return err
	}

	d.CreatedAt = now
	return nil
}

// GetByID retrieves a device by its identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Device, error) {
	return scanDevice(r.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM dispositivos WHERE id = ?", id))
}

// List retrieves all devices in id order.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	return r.query(ctx, "SELECT "+deviceColumns+" FROM dispositivos ORDER BY id ASC")
}

// ListByOwner retrieves the devices of one user in id order.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]Device, error) {
	return r.query(ctx,
		"SELECT "+deviceColumns+" FROM dispositivos WHERE usuario_id = ? ORDER BY id ASC", ownerID)
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (*Device, error) {
	var d Device
	var active int
	var createdAt string

	if err := s.Scan(&d.ID, &d.Name, &active, &d.OwnerID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("scanning device: %w", err)
	}

	d.Active = active != 0
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	return &d, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
