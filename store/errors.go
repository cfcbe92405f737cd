package store

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrUnavailable is matched by every error caused by the storage medium
	// (connection loss, corrupted rows, full disk).
	ErrUnavailable = errors.New("store unavailable")
	// ErrConflict is matched when a write violates a uniqueness constraint.
	ErrConflict = errors.New("store conflict")
)

// Error codes carried by Error
const (
	CodeUnavailable = "STORE_UNAVAILABLE"
	CodeConflict    = "STORE_CONFLICT"
)

// Error describes a failed store operation
type Error struct {
	Code       string
	Op         string
	Collection string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the sentinel that corresponds to the error code
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Code == CodeUnavailable
	case ErrConflict:
		return e.Code == CodeConflict
	}
	return false
}

func wrapErr(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		return err
	}
	code := CodeUnavailable
	if isUniqueViolation(err) {
		code = CodeConflict
	}
	return &Error{Code: code, Op: op, Collection: collection, Err: err}
}

// isUniqueViolation works with both PostgreSQL and SQLite error messages
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint")
}
