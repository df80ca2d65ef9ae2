// Package errkind defines the error taxonomy shared by the core, the ports and
// the adapters. Errors are wrapped with fmt.Errorf("%w: ...") and matched with
// errors.Is. This package has no internal dependencies to avoid import cycles.
package errkind

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned when a business-unique key already exists
	// (element code, project code, instance code, variable name, placeholder).
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound is returned when a referenced id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCategory is returned when a category is not in the fixed enumeration.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidTransition is returned when a version cannot advance or be rejected.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrForeignMismatch is returned when two referenced entities do not belong together.
	ErrForeignMismatch = errors.New("foreign mismatch")

	// ErrUnboundPlaceholder is returned when a version would become active with
	// placeholders that have no mapping.
	ErrUnboundPlaceholder = errors.New("unbound placeholder")

	// ErrInvalidArgument is returned for malformed input (unknown variable type, empty text).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict is returned when a compare-and-swap write loses.
	ErrConflict = errors.New("conflict")
)

// NotFound wraps ErrNotFound with the entity kind and key.
func NotFound(entity, key string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, key)
}

// Duplicate wraps ErrDuplicateKey with the entity kind and key.
func Duplicate(entity, key string) error {
	return fmt.Errorf("%w: %s %s already exists", ErrDuplicateKey, entity, key)
}

// Kind returns the sentinel an error wraps, or nil if it wraps none of them.
func Kind(err error) error {
	for _, k := range []error{
		ErrDuplicateKey,
		ErrNotFound,
		ErrInvalidCategory,
		ErrInvalidTransition,
		ErrForeignMismatch,
		ErrUnboundPlaceholder,
		ErrInvalidArgument,
		ErrConflict,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
