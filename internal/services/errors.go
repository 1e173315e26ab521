package services

import (
	"errors"

	apperrors "github.com/SAP-F-2025/quiz-service/internal/errors"
)

var (
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")

	ErrQuestionNotFound   = errors.New("question not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrAnswerNotFound     = errors.New("answer not found")

	ErrCollectionCodeExists = errors.New("collection code already exists")

	// ErrConcurrencyConflict is returned when a submission kept colliding with concurrent
	// submissions after every retry.
	ErrConcurrencyConflict = errors.New("concurrent submission conflict")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrCollectionNotFound) ||
		errors.Is(err, ErrAnswerNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrCollectionCodeExists) || errors.Is(err, ErrConcurrencyConflict)
}
