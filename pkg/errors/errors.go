package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match two AppErrors by code, so callers can compare
// against a bare constructor result without caring about the message.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Scheduling error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrInvalidRange
	ErrAmbiguousDoctor
	ErrSlotNotAvailable
	ErrSlotFull
	ErrBookingTimeout
	ErrInvariantViolation
	ErrConflict
	ErrValidation
	ErrBadRequest
	ErrInternal
)

// String returns the stable snake_case name of the code, suitable for
// metric labels and event payloads.
func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not_found"
	case ErrInvalidRange:
		return "invalid_range"
	case ErrAmbiguousDoctor:
		return "ambiguous_doctor"
	case ErrSlotNotAvailable:
		return "slot_not_available"
	case ErrSlotFull:
		return "slot_full"
	case ErrBookingTimeout:
		return "timeout"
	case ErrInvariantViolation:
		return "invariant_violation"
	case ErrConflict:
		return "conflict"
	case ErrValidation:
		return "validation"
	case ErrBadRequest:
		return "bad_request"
	case ErrInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// CodeOf extracts the ErrorCode from err, or ErrInternal when err is not
// an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// AsAppError is errors.As specialized for AppError, for callers whose
// errors import already refers to this package.
func AsAppError(err error, target **AppError) bool {
	return errors.As(err, target)
}

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewInvalidRange(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidRange,
		Message: message,
	}
}

func NewAmbiguousDoctor(message string) *AppError {
	return &AppError{
		Code:    ErrAmbiguousDoctor,
		Message: message,
	}
}

func NewSlotNotAvailable(message string) *AppError {
	return &AppError{
		Code:    ErrSlotNotAvailable,
		Message: message,
	}
}

func NewSlotFull(message string) *AppError {
	return &AppError{
		Code:    ErrSlotFull,
		Message: message,
	}
}

func NewBookingTimeout(message string) *AppError {
	return &AppError{
		Code:    ErrBookingTimeout,
		Message: message,
	}
}

func NewInvariantViolation(message string) *AppError {
	return &AppError{
		Code:    ErrInvariantViolation,
		Message: message,
	}
}

func NewConflict(message string) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
	}
}

func NewValidation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}
