package model

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes core errors.
type ErrorCode string

// Structural violations.
const (
	// ErrCodeMalformedBounds indicates a gap or overlap in an assembly stack.
	ErrCodeMalformedBounds ErrorCode = "MALFORMED_BOUNDS"

	// ErrCodeNotCompleted indicates serialization before ID assignment.
	ErrCodeNotCompleted ErrorCode = "NOT_COMPLETED"

	// ErrCodeNotMeshed indicates serialization before meshing.
	ErrCodeNotMeshed ErrorCode = "NOT_MESHED"

	// ErrCodeInvalidGeomKind indicates an unknown equivalence method.
	ErrCodeInvalidGeomKind ErrorCode = "INVALID_GEOM_KIND"

	// ErrCodeEmptySlot indicates a lattice slot without an assembly.
	ErrCodeEmptySlot ErrorCode = "EMPTY_SLOT"

	// ErrCodeDanglingRef indicates a handle that does not resolve.
	ErrCodeDanglingRef ErrorCode = "DANGLING_REF"

	// ErrCodeInvalidCoordinate indicates a (ring, clock) outside the lattice.
	ErrCodeInvalidCoordinate ErrorCode = "INVALID_COORDINATE"

	// ErrCodeMissingRingNumber indicates rods without a rod ring count.
	ErrCodeMissingRingNumber ErrorCode = "MISSING_RING_NUMBER"

	// ErrCodeMalformedDeck indicates a deck that cannot be parsed.
	ErrCodeMalformedDeck ErrorCode = "MALFORMED_DECK"
)

// Configuration errors.
const (
	// ErrCodeInvalidTolerance indicates a non-positive mesh tolerance.
	ErrCodeInvalidTolerance ErrorCode = "INVALID_TOLERANCE"

	// ErrCodeInvalidThreshold indicates a non-positive densify threshold.
	ErrCodeInvalidThreshold ErrorCode = "INVALID_THRESHOLD"

	// ErrCodeMissingFile indicates a required file that does not exist.
	ErrCodeMissingFile ErrorCode = "MISSING_FILE"

	// ErrCodeInvalidConfig indicates any other rejected configuration value.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

var configCodes = map[ErrorCode]bool{
	ErrCodeInvalidTolerance: true,
	ErrCodeInvalidThreshold: true,
	ErrCodeMissingFile:      true,
	ErrCodeInvalidConfig:    true,
}

// CoreError is a fatal error raised by a core operation. The operation that
// returns it produces no partial output.
type CoreError struct {
	Code    ErrorCode
	Message string
	Subject string // entity the error is about, if any
}

// Error implements the error interface.
func (e *CoreError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Subject)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Config reports whether the error is a configuration error.
func (e *CoreError) Config() bool {
	return configCodes[e.Code]
}

// IsStructural returns true if err is a structural violation.
// Uses errors.As to handle wrapped errors.
func IsStructural(err error) bool {
	var ce *CoreError
	if errors.As(err, &ce) {
		return !ce.Config()
	}
	return false
}

// IsConfig returns true if err is a configuration error.
func IsConfig(err error) bool {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Config()
	}
	return false
}

// HasCode returns true if err is a CoreError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// NewToleranceError creates a configuration error for a bad tolerance.
func NewToleranceError(tol float64) *CoreError {
	return &CoreError{
		Code:    ErrCodeInvalidTolerance,
		Message: fmt.Sprintf("tolerance must be > 0, got %g", tol),
	}
}

// NewThresholdError creates a configuration error for a bad cell height.
func NewThresholdError(h float64) *CoreError {
	return &CoreError{
		Code:    ErrCodeInvalidThreshold,
		Message: fmt.Sprintf("maximum cell height must be > 0, got %g", h),
	}
}
