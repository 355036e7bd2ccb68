package db

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record lookup finds nothing
	ErrNotFound = errors.New("record not found")

	// ErrConstraintViolation is returned when a write breaks a unique constraint
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrOpenPomodoro is returned when a pomodoro is created while another is still open
	ErrOpenPomodoro = errors.New("another pomodoro is still open")
)

// PersistenceError reports a rejected read or write
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// wrapErr turns a gorm error into a PersistenceError.
// Unique index failures also match ErrConstraintViolation, missing rows match ErrNotFound.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var perr *PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = fmt.Errorf("%w: %v", ErrNotFound, err)
	case isUniqueViolation(err):
		err = fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	return &PersistenceError{Op: op, Err: err}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsNotFound reports whether err means the record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
