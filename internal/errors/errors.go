package errors

import (
	"fmt"
)

// ErrorType classifies pipeline and API failures
type ErrorType string

const (
	// ErrTypeLoad covers missing or unreadable source files. Fatal at startup.
	ErrTypeLoad ErrorType = "LOAD"
	// ErrTypeFormat covers delimiter and encoding problems. Fatal at startup.
	ErrTypeFormat ErrorType = "FORMAT"
	// ErrTypeSchema covers missing or unexpected source columns. Fatal at startup.
	ErrTypeSchema ErrorType = "SCHEMA"
	// ErrTypeValidation covers post-cleaning invariant violations. Fatal at startup.
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeGeoParse covers malformed per-region geometry. Non-fatal; the region
	// is excluded from map views but kept in every other view.
	ErrTypeGeoParse ErrorType = "GEO_PARSE"
	ErrTypeStorage  ErrorType = "STORAGE"
	ErrTypeConfig   ErrorType = "CONFIG"
	ErrTypeNotFound ErrorType = "NOT_FOUND"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error. Loader and cleaner use it to record
// the failing stage, row and column for startup diagnostics.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper constructors for the pipeline error taxonomy

// NewLoadError creates a source-file access error
func NewLoadError(message string, cause error) *AppError {
	return NewAppError(ErrTypeLoad, message, cause)
}

// NewFormatError creates a delimiter/encoding error
func NewFormatError(message string, cause error) *AppError {
	return NewAppError(ErrTypeFormat, message, cause)
}

// NewSchemaError creates a missing/unexpected column error
func NewSchemaError(message string) *AppError {
	return NewAppError(ErrTypeSchema, message, nil)
}

// NewValidationError creates an invariant-violation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewGeoParseError creates a per-region geometry error
func NewGeoParseError(regionCode string, cause error) *AppError {
	return NewAppError(ErrTypeGeoParse, fmt.Sprintf("malformed geometry for region %s", regionCode), cause).
		WithContext("region_code", regionCode)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// IsFatal reports whether the error must abort startup. Geometry failures are
// collected and surfaced per region instead.
func IsFatal(err *AppError) bool {
	switch err.Type {
	case ErrTypeLoad, ErrTypeFormat, ErrTypeSchema, ErrTypeValidation:
		return true
	}
	return false
}
