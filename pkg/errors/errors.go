// Package errors provides structured error types for seqgraph.
//
// This package defines error codes and types that enable:
//   - Per-variant recovery in batch callers (skip on VARIANT_NOT_FOUND)
//   - Machine-readable error codes for the CLI and the HTTP query service
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Resolution errors are recoverable by the caller:
//   - VARIANT_NOT_FOUND: the graph has no path matching the variant's allele
//   - CHROMOSOME_NOT_FOUND: chromosome index outside the graph's chromosome starts
//   - NODE_OUT_OF_RANGE: node id or reference offset outside the graph
//
// Construction errors abort the build:
//   - AMBIGUOUS_TOPOLOGY: a disambiguation precondition does not hold
//   - MALFORMED_NODE: empty allele node or zero-length reference node
//   - UNSORTED_VARIANTS: variant stream is not sorted by position
//
// # Usage
//
//	ref, alt, err := g.ResolveVariantNodes(v, 1)
//	if errors.Is(err, errors.ErrCodeVariantNotFound) {
//	    // skip this variant
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidPath       Code = "INVALID_PATH"
	ErrCodeUnsortedVariants  Code = "UNSORTED_VARIANTS"
	ErrCodeInvalidChromosome Code = "INVALID_CHROMOSOME"

	// Lookup errors
	ErrCodeVariantNotFound    Code = "VARIANT_NOT_FOUND"
	ErrCodeChromosomeNotFound Code = "CHROMOSOME_NOT_FOUND"
	ErrCodeNodeOutOfRange     Code = "NODE_OUT_OF_RANGE"
	ErrCodeFileNotFound       Code = "FILE_NOT_FOUND"

	// Graph invariant violations
	ErrCodeAmbiguousTopology Code = "AMBIGUOUS_TOPOLOGY"
	ErrCodeMalformedNode     Code = "MALFORMED_NODE"
	ErrCodeCyclicGraph       Code = "CYCLIC_GRAPH"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

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

// IsRecoverable reports whether err is a per-variant lookup failure that a
// batch caller may skip over. Construction-time invariant violations are not
// recoverable.
func IsRecoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeVariantNotFound:
		return true
	}
	return false
}
