package device

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxNameLength is the longest device name accepted, in characters.
const maxNameLength = 100

// ValidateDevice checks a device before it is stored. Surrounding
// whitespace in the name is trimmed in place.
func ValidateDevice(d *Device) error {
	if d == nil {
		return ErrInvalidDevice
	}

	d.Name = strings.TrimSpace(d.Name)
	if err := ValidateName(d.Name); err != nil {
		return err
	}

	if d.OwnerID <= 0 {
		return fmt.Errorf("%w: usuario_id must be a positive integer", ErrInvalidOwner)
	}
	return nil
}

// ValidateName checks that name is non-empty and within maxNameLength.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: nombre is required", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: nombre must be at most %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}
