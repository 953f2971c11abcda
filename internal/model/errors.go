package model

import (
	"errors"
	"fmt"
)

// Error kinds shared by the store, service and transport layers.
var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("location not found")
	ErrIncompleteData = errors.New("incomplete location data")
	ErrReferential    = errors.New("referential integrity violation")
	ErrStore          = errors.New("store error")
	ErrProvider       = errors.New("geocoding provider error")
)

// ValidationError reports an empty or malformed required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Classify tags err with kind so that errors.Is matches both kind and the
// original cause.
func Classify(kind, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// PublicMessage returns the text that may be shown to API clients for err.
// Driver and provider details stay in the operator log.
func PublicMessage(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrNotFound):
		return "Location not found"
	case errors.Is(err, ErrIncompleteData):
		return "Incomplete location data"
	case errors.Is(err, ErrReferential):
		return "referenced record does not exist"
	case errors.Is(err, ErrProvider):
		return "geocoding provider unavailable"
	default:
		return "internal error"
	}
}
