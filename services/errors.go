package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"talenttrack-backend/models"
)

// Sentinel errors. Callers wrap them with fmt.Errorf("%w: ...") to add detail;
// the HTTP layer maps them with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
)

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// storeErr converts store errors into service errors; what names the entity.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, models.ErrDuplicate):
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// requireID turns an id that cannot be a primary key into ErrNotFound.
// Postgres fails the uuid cast with a syntax error instead of finding nothing.
func requireID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return nil
}
