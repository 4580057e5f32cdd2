package reading

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxCoordinatesLength bounds the free-form coordinate string.
const maxCoordinatesLength = 256

// Validate checks a reading before it is stored. Coordinates are trimmed
// in place; their content is not interpreted. The only checks on them are
// deliberate: blank or oversized strings are rejected, any other text is
// stored as sent.
func Validate(r *Reading) error {
	if r == nil {
		return ErrInvalidReading
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: fecha is required", ErrInvalidReading)
	}

	r.Coordinates = strings.TrimSpace(r.Coordinates)
	if r.Coordinates == "" {
		return fmt.Errorf("%w: coordenadas is required", ErrInvalidReading)
	}
	if utf8.RuneCountInString(r.Coordinates) > maxCoordinatesLength {
		return fmt.Errorf("%w: coordenadas must be at most %d characters", ErrInvalidReading, maxCoordinatesLength)
	}

	if r.DeviceID <= 0 {
		return fmt.Errorf("%w: dispositivo_id must be a positive integer", ErrInvalidReading)
	}
	return nil
}
