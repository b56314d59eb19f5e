// Package errors provides structured error types for glyphtools.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - Stage tagging for the chained codec, so a failure names the step that broke
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The taxonomy follows the composition pipeline:
//   - FORMAT_ERROR: malformed container, JSON or label syntax
//   - VALIDATION_ERROR: out-of-grammar labels, unknown model or version, duplicates
//   - TOPOLOGY_ERROR: glyph/zone index with no column mapping for the model
//   - CODEC_ERROR: base64, compression or decryption failures (with a stage)
//   - EXTERNAL_TOOL_ERROR: ffmpeg/ffprobe failures (with captured stderr)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeValidation, "unsupported label version %d", v)
//	if errors.Is(err, errors.ErrCodeValidation) {
//	    // Handle validation error
//	}
//
//	// Codec failures carry the stage that failed
//	err := errors.Codec(errors.StageDecrypt, cause, "integrity check failed")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodeFormat       Code = "FORMAT_ERROR"
	ErrCodeValidation   Code = "VALIDATION_ERROR"
	ErrCodeTopology     Code = "TOPOLOGY_ERROR"
	ErrCodeCodec        Code = "CODEC_ERROR"
	ErrCodeExternalTool Code = "EXTERNAL_TOOL_ERROR"

	// Boundary errors (CLI, API, store)
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeNotFound     Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Stage names the codec step that produced a CODEC_ERROR.
type Stage string

// Codec stages, in encoding order.
const (
	StageRows       Stage = "rows"
	StageIndex      Stage = "index"
	StageCompress   Stage = "compress"
	StageEncrypt    Stage = "encrypt"
	StageHeader     Stage = "header"
	StageBase64     Stage = "base64"
	StageDecompress Stage = "decompress"
	StageDecrypt    Stage = "decrypt"
	StageUTF8       Stage = "utf8"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Stage   Stage  // Codec stage (CODEC_ERROR only)
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Stage != "" {
		prefix += "[" + string(e.Stage) + "]"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
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

// Codec creates a CODEC_ERROR for the given stage. cause may be nil.
func Codec(stage Stage, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeCodec,
		Stage:   stage,
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

// GetStage extracts the codec stage from an error, if available.
func GetStage(err error) Stage {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
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

// Join wraps several collected errors into one coded error.
// It returns nil when errs is empty.
func Join(code Code, errs []error, format string, args ...any) error {
	if len(errs) == 0 {
		return nil
	}
	return Wrap(code, errors.Join(errs...), format, args...)
}
