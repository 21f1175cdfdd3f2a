package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrTypeMismatch    = errors.New("value has an unexpected shape")
	ErrKeyMissing      = errors.New("required key is missing")
	ErrRange           = errors.New("value out of representable range")
	ErrFilesFailed     = errors.New("some files could not be processed")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput        ErrorType = "input"
	ErrorTypeParsing      ErrorType = "parsing"
	ErrorTypeTypeMismatch ErrorType = "type_mismatch"
	ErrorTypeKeyMissing   ErrorType = "key_missing"
	ErrorTypeRange        ErrorType = "range"
	ErrorTypeIO           ErrorType = "io"
	ErrorTypeConfig       ErrorType = "config"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	// Path locates the failure: a file path, or a JSON path such as
	// "$.objects[2].mesh.color". Empty when not applicable.
	Path string
	Err  error
}

// Error implements error interface
func (e *AppError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	// Check if target is also an *AppError and if the types match
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithPath returns a copy of the error located at path.
func (e *AppError) WithPath(path string) *AppError {
	cp := *e
	cp.Path = path
	return &cp
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInput,
		Message: message,
		Err:     err,
	}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeParsing,
		Message: message,
		Err:     err,
	}
}

// NewTypeMismatchError reports a value whose shape does not match what a
// transform expects.
func NewTypeMismatchError(path, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeTypeMismatch,
		Message: message,
		Path:    path,
		Err:     ErrTypeMismatch,
	}
}

// NewKeyMissingError reports a document lacking a required key.
func NewKeyMissingError(path, key string) *AppError {
	return &AppError{
		Type:    ErrorTypeKeyMissing,
		Message: fmt.Sprintf("missing %q field", key),
		Path:    path,
		Err:     ErrKeyMissing,
	}
}

// NewRangeError reports a scalar that cannot be represented in the target
// numeric format.
func NewRangeError(path, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeRange,
		Message: message,
		Path:    path,
		Err:     ErrRange,
	}
}

// NewIOError creates a new error related to filesystem access
func NewIOError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeIO,
		Message: message,
		Err:     err,
	}
}

// NewConfigError creates a new error related to configuration
func NewConfigError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeConfig,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, typ ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == typ
	}
	return false
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if appErr.Path != "" {
			msg = fmt.Sprintf("%s (%s)", msg, appErr.Path)
		}
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", msg)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", msg)
		case ErrorTypeTypeMismatch:
			return fmt.Sprintf("Type mismatch: %s", msg)
		case ErrorTypeKeyMissing:
			return fmt.Sprintf("Missing key: %s", msg)
		case ErrorTypeRange:
			return fmt.Sprintf("Range error: %s", msg)
		case ErrorTypeIO:
			if appErr.Err != nil {
				return fmt.Sprintf("I/O error: %s: %v", msg, appErr.Err)
			}
			return fmt.Sprintf("I/O error: %s", msg)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", msg)
		default:
			return fmt.Sprintf("Error: %s", msg)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON document per file."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	// Generic error message for unknown errors
	return fmt.Sprintf("Error: %v", err)
}
