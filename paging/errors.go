package paging

import (
	"errors"
	"fmt"
)

// ErrorCode represents different types of simulator errors
type ErrorCode int

const (
	// Generic errors
	ErrCodeUnknown ErrorCode = iota
	ErrCodeInternal

	// Configuration errors
	ErrCodeInvalidConfiguration
	ErrCodeUnsupportedAlgorithm

	// Playback errors
	ErrCodeStepOutOfRange

	// Trace archive errors
	ErrCodeTraceCorrupted
	ErrCodeTraceIO
)

var errorCodeNames = map[ErrorCode]string{
	ErrCodeUnknown:              "Unknown",
	ErrCodeInternal:             "Internal",
	ErrCodeInvalidConfiguration: "InvalidConfiguration",
	ErrCodeUnsupportedAlgorithm: "UnsupportedAlgorithm",
	ErrCodeStepOutOfRange:       "StepOutOfRange",
	ErrCodeTraceCorrupted:       "TraceCorrupted",
	ErrCodeTraceIO:              "TraceIO",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// SimError represents a simulator error with context
type SimError struct {
	Code    ErrorCode
	Message string
	Op      string // Operation that failed
	Err     error  // Underlying error (if any)
}

// Error implements the error interface
func (e *SimError) Error() string {
	if e.Op != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *SimError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a specific error code
func (e *SimError) Is(target error) bool {
	if t, ok := target.(*SimError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewSimError creates a new simulator error
func NewSimError(code ErrorCode, op, message string, err error) *SimError {
	return &SimError{
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// Helper functions for common errors

func ErrInvalidConfiguration(op, message string) *SimError {
	return NewSimError(ErrCodeInvalidConfiguration, op, message, nil)
}

func ErrEmptySequence(op string) *SimError {
	return NewSimError(
		ErrCodeInvalidConfiguration,
		op,
		"reference sequence is empty",
		nil,
	)
}

func ErrInvalidFrameCount(op string, frameCount int) *SimError {
	return NewSimError(
		ErrCodeInvalidConfiguration,
		op,
		fmt.Sprintf("frame count must be at least 1, got %d", frameCount),
		nil,
	)
}

func ErrInvalidPage(op string, step int, page int) *SimError {
	return NewSimError(
		ErrCodeInvalidConfiguration,
		op,
		fmt.Sprintf("page %d at step %d is not a non-negative integer", page, step),
		nil,
	)
}

func ErrUnsupportedAlgorithm(op string, id string) *SimError {
	return NewSimError(
		ErrCodeUnsupportedAlgorithm,
		op,
		fmt.Sprintf("unsupported algorithm %q", id),
		nil,
	)
}

func ErrStepOutOfRange(op string, step int, length int) *SimError {
	return NewSimError(
		ErrCodeStepOutOfRange,
		op,
		fmt.Sprintf("step %d out of range [0, %d)", step, length),
		nil,
	)
}

func ErrInternal(op, message string, err error) *SimError {
	return NewSimError(ErrCodeInternal, op, message, err)
}

func ErrTraceCorrupted(op, message string, err error) *SimError {
	return NewSimError(ErrCodeTraceCorrupted, op, message, err)
}

func ErrTraceIO(op string, err error) *SimError {
	return NewSimError(
		ErrCodeTraceIO,
		op,
		"trace file operation failed",
		err,
	)
}

// IsErrorCode checks if an error (or anything it wraps) has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var se *SimError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrCodeUnknown
func GetErrorCode(err error) ErrorCode {
	var se *SimError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeUnknown
}
