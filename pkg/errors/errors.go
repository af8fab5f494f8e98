// Package errors provides structured error types for surveyplot.
//
// Every failure that reaches a user is one of four kinds:
//   - input errors: missing upload, malformed JSON, bad options
//   - shape incompatibility: the chosen chart cannot represent the results
//   - render errors: figure construction failed
//   - export errors: the image could not be written or verified
//
// Each kind maps to one or more [Code] values so the web form and the CLI
// can render a message without inspecting error strings.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s", f)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeExport, origErr, "write %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeMissingUpload   Code = "MISSING_UPLOAD"
	ErrCodeInvalidJSON     Code = "INVALID_JSON"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidDPI      Code = "INVALID_DPI"
	ErrCodeInvalidName     Code = "INVALID_NAME"
	ErrCodeInvalidPlotType Code = "INVALID_PLOT_TYPE"
	ErrCodeInvalidScheme   Code = "INVALID_SCHEME"
	ErrCodeInvalidPalette  Code = "INVALID_PALETTE"
	ErrCodeInvalidColor    Code = "INVALID_COLOR"

	// Shape errors
	ErrCodeIncompatibleShape Code = "INCOMPATIBLE_SHAPE"
	ErrCodeLengthMismatch    Code = "LENGTH_MISMATCH"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeUploadNotFound Code = "UPLOAD_NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Output errors
	ErrCodeRender Code = "RENDER_FAILED"
	ErrCodeExport Code = "EXPORT_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind groups codes into the categories shown to users.
type Kind string

// Error kinds.
const (
	KindInput    Kind = "input"
	KindShape    Kind = "shape"
	KindRender   Kind = "render"
	KindExport   Kind = "export"
	KindInternal Kind = "internal"
)

// Kind returns the user-facing category of a code.
func (c Code) Kind() Kind {
	switch c {
	case ErrCodeIncompatibleShape, ErrCodeLengthMismatch:
		return KindShape
	case ErrCodeRender:
		return KindRender
	case ErrCodeExport, ErrCodeFileNotFound:
		return KindExport
	case ErrCodeInternal, ErrCodeUnsupported, "":
		return KindInternal
	default:
		return KindInput
	}
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetKind returns the category of err. Errors without a code are internal.
func GetKind(err error) Kind {
	return GetCode(err).Kind()
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
