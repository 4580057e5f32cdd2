package reading

import "errors"

var (
	// ErrReadingNotFound is returned when a reading ID does not exist.
	ErrReadingNotFound = errors.New("reading: not found")

	// ErrDeviceNotFound is returned when a reading references a device
	// that does not exist.
	ErrDeviceNotFound = errors.New("reading: device not found")

	// ErrInvalidReading is returned when reading validation fails.
	ErrInvalidReading = errors.New("reading: invalid")
)
