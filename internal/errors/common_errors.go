package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeParsing     ErrorType = "PARSING"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeAggregation ErrorType = "AGGREGATION"
	ErrTypeStorage     ErrorType = "STORAGE"
	ErrTypeConfig      ErrorType = "CONFIG"
)

// Sentinel errors carried as the Cause of an AppError so callers can match
// them with errors.Is.
var (
	ErrUnexpectedEOF      = errors.New("unexpected end of input")
	ErrInvalidHeader      = errors.New("invalid header value")
	ErrFieldCount         = errors.New("wrong number of fields")
	ErrLineTooLong        = errors.New("line too long")
	ErrTooFewRespondents  = errors.New("fewer respondent rows than declared")
	ErrTooManyRespondents = errors.New("more respondent rows than declared")
	ErrNoRespondents      = errors.New("no respondents")
	ErrInconsistentSurvey = errors.New("inconsistent survey data")
	ErrUnknownFormat      = errors.New("unknown output format")
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

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// LogAttrs flattens the error context into key/value pairs for slog.
// Keys are sorted so log lines are stable.
func (e *AppError) LogAttrs() []any {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, 2*len(keys)+2)
	attrs = append(attrs, "error_type", string(e.Type))
	for _, k := range keys {
		attrs = append(attrs, k, e.Context[k])
	}
	return attrs
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

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewLineError creates a parsing error located at a 1-based input line.
// The field names the header or record element being read.
func NewLineError(line int, field, message string, cause error) *AppError {
	msg := fmt.Sprintf("line %d: %s: %s", line, field, message)
	return NewParsingError(msg, cause).
		WithContext("line", line).
		WithContext("field", field)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewFieldValidationError creates a validation error listing every failed field.
func NewFieldValidationError(problems []string) *AppError {
	return NewAppError(ErrTypeValidation, "survey validation failed: "+strings.Join(problems, "; "), nil).
		WithContext("problems", problems)
}

// NewAggregationError creates an aggregation error
func NewAggregationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeAggregation, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
