// internal/errs/errors.go
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is()
var (
	ErrNotFound          = errors.New("resource not found")
	ErrForbidden         = errors.New("forbidden")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("concurrent modification")
	ErrAlreadyExists     = errors.New("resource already exists")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPaymentAnomaly    = errors.New("payment anomaly")
	ErrPreviewLocked     = errors.New("preview not available")
	ErrLimitReached      = errors.New("limit reached")
)

// AppError carries a stable code and a caller-safe message next to the
// underlying sentinel.
type AppError struct {
	Code    string
	Message string
	Err     error
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

// Constructors
func NotFound(resource string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: resource + " not found", Err: ErrNotFound}
}

func Forbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Message: msg, Err: ErrForbidden}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: msg, Err: ErrUnauthorized}
}

func Validation(msg string) *AppError {
	return &AppError{Code: "VALIDATION_ERROR", Message: msg, Err: ErrValidation}
}

func Conflict(msg string) *AppError {
	return &AppError{Code: "CONFLICT", Message: msg, Err: ErrConflict}
}

func AlreadyExists(msg string) *AppError {
	return &AppError{Code: "ALREADY_EXISTS", Message: msg, Err: ErrAlreadyExists}
}

func InvalidTransition(from, event string) *AppError {
	return &AppError{
		Code:    "INVALID_TRANSITION",
		Message: fmt.Sprintf("cannot %s a project in status %s", event, from),
		Err:     ErrInvalidTransition,
	}
}

// PreconditionFailed rejects an edge that exists in the state machine but
// whose precondition does not hold, e.g. publishing a project with no files.
func PreconditionFailed(msg string) *AppError {
	return &AppError{Code: "INVALID_TRANSITION", Message: msg, Err: ErrInvalidTransition}
}

func PaymentAnomaly(msg string) *AppError {
	return &AppError{Code: "PAYMENT_ANOMALY", Message: msg, Err: ErrPaymentAnomaly}
}

func PreviewLocked(msg string) *AppError {
	return &AppError{Code: "PREVIEW_UNAVAILABLE", Message: msg, Err: ErrPreviewLocked}
}

func LimitReached(msg string) *AppError {
	return &AppError{Code: "LIMIT_REACHED", Message: msg, Err: ErrLimitReached}
}

// Code returns the AppError code found in err's chain, or INTERNAL_ERROR.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}

func IsNotFound(err error) bool          { return errors.Is(err, ErrNotFound) }
func IsForbidden(err error) bool         { return errors.Is(err, ErrForbidden) }
func IsConflict(err error) bool          { return errors.Is(err, ErrConflict) }
func IsInvalidTransition(err error) bool { return errors.Is(err, ErrInvalidTransition) }
func IsAlreadyExists(err error) bool     { return errors.Is(err, ErrAlreadyExists) }
func IsPaymentAnomaly(err error) bool    { return errors.Is(err, ErrPaymentAnomaly) }
