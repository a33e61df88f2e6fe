package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrPermissionDenied = new(ErrCodePermissionDenied, "permission denied")
	ErrConsentMismatch  = new(ErrCodeConsentMismatch, "consent mismatch")
	ErrInvalidSignature = new(ErrCodeInvalidSignature, "invalid signature")
	ErrTiming           = new(ErrCodeTiming, "payment timing error")
	ErrTransferFailed   = new(ErrCodeTransferFailed, "token ledger transfer failed")
	ErrSystem           = new(ErrCodeSystemError, "system error")
	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:         http.StatusNotFound,
		ErrAlreadyExists:    http.StatusConflict,
		ErrValidation:       http.StatusBadRequest,
		ErrPermissionDenied: http.StatusForbidden,
		ErrConsentMismatch:  http.StatusForbidden,
		ErrInvalidSignature: http.StatusBadRequest,
		ErrTiming:           http.StatusUnprocessableEntity,
		ErrTransferFailed:   http.StatusUnprocessableEntity,
		ErrSystem:           http.StatusInternalServerError,
	}
)

const (
	ErrCodeSystemError      = "system_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeAlreadyExists    = "already_exists"
	ErrCodeValidation       = "validation_error"
	ErrCodePermissionDenied = "permission_denied"
	ErrCodeConsentMismatch  = "consent_mismatch"
	ErrCodeInvalidSignature = "invalid_signature"
	ErrCodeTiming           = "timing_error"
	ErrCodeTransferFailed   = "transfer_failed"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// new creates a new InternalError sentinel
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsPermissionDenied checks if an error is a permission denied error
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsConsentMismatch checks if an error is a consent mismatch error
func IsConsentMismatch(err error) bool {
	return errors.Is(err, ErrConsentMismatch)
}

// IsInvalidSignature checks if an error is an invalid signature error
func IsInvalidSignature(err error) bool {
	return errors.Is(err, ErrInvalidSignature)
}

// IsTiming checks if an error is a payment timing error
func IsTiming(err error) bool {
	return errors.Is(err, ErrTiming)
}

// IsTransferFailed checks if an error is a ledger transfer failure
func IsTransferFailed(err error) bool {
	return errors.Is(err, ErrTransferFailed)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
