package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func (pe *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", pe.Field, pe.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// NewValidationErrorWithRule creates a new validation error with rule
func NewValidationErrorWithRule(field, message, rule string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    rule,
	}
}

// Add appends a field error carrying the rule that failed.
func (ve *ValidationErrors) Add(field, message, rule string) {
	*ve = append(*ve, ValidationError{Field: field, Message: message, Rule: rule})
}

// ToValidationErrors converts validator.ValidationErrors to our custom type. Field paths use
// json names, with the top-level struct name dropped.
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	var validatorErr validator.ValidationErrors
	if stderrors.As(err, &validatorErr) {
		for _, err := range validatorErr {
			errors = append(errors, ValidationError{
				Field:   fieldPath(err),
				Message: getErrorMessage(err),
				Value:   err.Value(),
				Rule:    err.Tag(),
			})
		}
	}

	return errors
}

func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}

// getErrorMessage returns user-friendly error messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", err.Param())
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "numeric":
		return "must be a number"
	case "alpha":
		return "must contain only letters"
	case "alphanum":
		return "must contain only letters and numbers"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	case "url":
		return "must be a valid URL"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", err.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", err.Param())
	case "dive":
		return "contains an invalid item"

	// Custom validators
	case "question_type":
		return "must be a valid question type (MCQ, TrueFalse, Fill, ErrorSpotting, OutputPrediction, CodeWriting)"
	case "difficulty_level":
		return "must be Beginner, Intermediate, or Advanced"
	case "collection_code":
		return "must contain only lowercase letters, digits and hyphens"

	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
