package reading

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gps-tracker/internal/infrastructure/database"
)

// Repository defines persistence for readings.
type Repository interface {
	// Create validates and inserts a reading, setting its ID.
	// Returns ErrDeviceNotFound if the device does not exist.
	Create(ctx context.Context, r *Reading) error

	// GetByID returns ErrReadingNotFound when no reading has id.
	GetByID(ctx context.Context, id int64) (*Reading, error)

	// List returns every reading in id order.
	List(ctx context.Context) ([]Reading, error)

	// ListByDevice returns the readings of one device in id order.
	ListByDevice(ctx context.Context, deviceID int64) ([]Reading, error)
}

const readingColumns = "id, fecha, coordenadas, dispositivo_id"

// fechaLayout is fixed width so stored timestamps sort lexically.
const fechaLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository implements Repository on the registros table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed reading repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create validates r, checks its device and inserts it in one transaction.
// The timestamp is normalised to UTC.
func (s *SQLiteRepository) Create(ctx context.Context, r *Reading) error {
	if err := Validate(r); err != nil {
		return err
	}
	r.Timestamp = r.Timestamp.UTC()

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM dispositivos WHERE id = ?", r.DeviceID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDeviceNotFound
		}
		if err != nil {
			return fmt.Errorf("checking device: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			"INSERT INTO registros (fecha, coordenadas, dispositivo_id) VALUES (?, ?, ?)",
			r.Timestamp.Format(fechaLayout), r.Coordinates, r.DeviceID,
		)
		if err != nil {
			if database.IsForeignKeyViolation(err) {
				return ErrDeviceNotFound
			}
			return fmt.Errorf("inserting reading: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading registro id: %w", err)
		}
		r.ID = id
		return nil
	})
	if err != nil {
		r.ID = 0
		return err
	}
	return nil
}

// GetByID retrieves a reading by its identifier.
func (s *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Reading, error) {
	return scanReading(s.db.QueryRowContext(ctx,
		"SELECT "+readingColumns+" FROM registros WHERE id = ?", id))
}

// List retrieves all readings in id order.
func (s *SQLiteRepository) List(ctx context.Context) ([]Reading, error) {
	return s.query(ctx, "SELECT "+readingColumns+" FROM registros ORDER BY id ASC")
}

// ListByDevice retrieves the readings of one device in id order.
func (s *SQLiteRepository) ListByDevice(ctx context.Context, deviceID int64) ([]Reading, error) {
	return s.query(ctx,
		"SELECT "+readingColumns+" FROM registros WHERE dispositivo_id = ? ORDER BY id ASC", deviceID)
}

func (s *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]Reading, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing readings: %w", err)
	}
	defer rows.Close()

	readings := []Reading{}
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating readings: %w", err)
	}
	return readings, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReading(sc scanner) (*Reading, error) {
	var r Reading
	var fecha string

	if err := sc.Scan(&r.ID, &fecha, &r.Coordinates, &r.DeviceID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReadingNotFound
		}
		return nil, fmt.Errorf("scanning reading: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, fecha)
	if err != nil {
		return nil, fmt.Errorf("parsing fecha of reading %d: %w", r.ID, err)
	}
	r.Timestamp = ts
	return &r, nil
}
