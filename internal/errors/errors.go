// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType classifies a failure so callers can branch on kind, not text
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation_error"
	ErrorTypeTransport      ErrorType = "transport_error"
	ErrorTypeParse          ErrorType = "parse_error"
	ErrorTypeSchemaMismatch ErrorType = "schema_mismatch"
	ErrorTypeTimeout        ErrorType = "timeout"
	ErrorTypeCanceled       ErrorType = "canceled"
	ErrorTypeConfig         ErrorType = "config_error"
	ErrorTypeUnknown        ErrorType = "unknown_error"
)

// EmptyScriptMessage is shown when a blank script is submitted
const EmptyScriptMessage = "Script cannot be empty."

// AppError is the error type shared by every layer
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError builds an AppError of the given kind
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewValidationError reports input rejected before any remote call
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewTransportError reports a remote call that could not complete
func NewTransportError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeTransport, message, originalError)
}

// NewParseError reports a response that is not valid JSON
func NewParseError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeParse, message, originalError)
}

// NewSchemaMismatchError reports valid JSON with the wrong shape
func NewSchemaMismatchError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeSchemaMismatch, message, originalError)
}

// NewTimeoutError reports a remote call that exceeded its deadline
func NewTimeoutError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeTimeout, message, originalError)
}

// NewCanceledError reports a request abandoned by the caller
func NewCanceledError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeCanceled, message, originalError)
}

// NewConfigError reports an unusable configuration
func NewConfigError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeConfig, message, originalError)
}

// TypeOf returns the kind of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type
	}
	return ErrorTypeUnknown
}

// IsValidationError reports whether err is invalid user input
func IsValidationError(err error) bool {
	return TypeOf(err) == ErrorTypeValidation
}

// IsTransportError reports whether err is a transport failure
func IsTransportError(err error) bool {
	return TypeOf(err) == ErrorTypeTransport
}

// IsParseError reports whether err is a JSON parse failure
func IsParseError(err error) bool {
	return TypeOf(err) == ErrorTypeParse
}

// IsSchemaMismatchError reports whether err is a structural mismatch
func IsSchemaMismatchError(err error) bool {
	return TypeOf(err) == ErrorTypeSchemaMismatch
}

// IsTimeoutError reports whether err is a deadline failure
func IsTimeoutError(err error) bool {
	return TypeOf(err) == ErrorTypeTimeout
}

// IsCanceledError reports whether err is a cancellation
func IsCanceledError(err error) bool {
	return TypeOf(err) == ErrorTypeCanceled
}

// IsConfigError reports whether err is a configuration failure
func IsConfigError(err error) bool {
	return TypeOf(err) == ErrorTypeConfig
}

// generateErrorCode maps a kind to its API error code
func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeTransport:
		return "TRANSPORT_ERROR"
	case ErrorTypeParse:
		return "PARSE_ERROR"
	case ErrorTypeSchemaMismatch:
		return "SCHEMA_MISMATCH"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeCanceled:
		return "CANCELED"
	case ErrorTypeConfig:
		return "CONFIG_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// CodeOf returns the API error code for err
func CodeOf(err error) string {
	return generateErrorCode(TypeOf(err))
}

// WrapError prefixes message onto err, keeping an existing kind
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		// keep the original kind and cause, only extend the message
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError.Err,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}

// UserMessage composes the text shown in the page's alert region.
// Validation messages are shown verbatim; everything else is wrapped with
// a hint about connectivity and the API key.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var appError *AppError
	if errors.As(err, &appError) && appError.Type == ErrorTypeValidation {
		return appError.Message
	}

	msg := err.Error()
	if strings.TrimSpace(msg) == "" {
		return "An unknown error occurred. Please try again."
	}
	// the cause is interpolated verbatim, trailing punctuation included
	return fmt.Sprintf("An error occurred: %s. Please check your connection and API key, then try again.", msg)
}
