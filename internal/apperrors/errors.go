package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Error kinds shared by all services. Services wrap these with context via
// fmt.Errorf("...: %w", Err...) and handlers map them to HTTP statuses with
// errors.Is.
var (
	ErrNotFound                 = errors.New("not found")
	ErrInvalidStateTransition   = errors.New("invalid state transition")
	ErrInsufficientStock        = errors.New("insufficient stock")
	ErrInsufficientAvailability = errors.New("insufficient availability")
	ErrReceiptRequired          = errors.New("receipt required")
	ErrUniquenessViolation      = errors.New("uniqueness violation")
	ErrHasDependents            = errors.New("has dependents")
	ErrValidation               = errors.New("validation failed")
	ErrPersistenceFailure       = errors.New("persistence failure")
)

// NotFound wraps ErrNotFound with the entity name.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Wrap maps a raw GORM error to the taxonomy: ErrRecordNotFound becomes a
// NotFound for the given entity, anything else wraps ErrPersistenceFailure.
func Wrap(entity string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(entity)
	}
	return fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
}

// StatusCode maps an error kind to an HTTP status for handler responses.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidStateTransition),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrInsufficientAvailability),
		errors.Is(err, ErrReceiptRequired),
		errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUniquenessViolation),
		errors.Is(err, ErrHasDependents):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
