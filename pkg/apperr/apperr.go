package apperr

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the engine. Callers test with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrEntitlement = errors.New("entitlement required")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
)

func Validation(format string, args ...any) error {
	return wrap(ErrValidation, format, args...)
}

func Entitlement(format string, args ...any) error {
	return wrap(ErrEntitlement, format, args...)
}

func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

func Conflict(format string, args ...any) error {
	return wrap(ErrConflict, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Kind returns the sentinel err was built from, or nil for infrastructure errors.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrEntitlement, ErrNotFound, ErrConflict} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
