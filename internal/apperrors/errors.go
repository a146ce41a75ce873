package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthenticated indicates that the caller identity is missing.
var ErrUnauthenticated = errors.New("authentication required")

// ErrForbidden indicates that the caller may not act on the target resource.
var ErrForbidden = errors.New("permission denied")

// ErrInsufficientFunds indicates that a debit would overdraw an account.
var ErrInsufficientFunds = errors.New("insufficient balance")

// ErrSelfPayment indicates that the resolved recipient is the payer.
var ErrSelfPayment = errors.New("cannot send money to yourself")

// ErrConflict indicates a concurrent modification lost an optimistic check.
var ErrConflict = errors.New("concurrent modification")

// ErrInternal is the generic error surfaced for infrastructure failures.
var ErrInternal = errors.New("internal error")

// AppError carries an infrastructure failure with an HTTP-ish status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError wraps err with a status code and a human readable message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
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

// Callable error codes returned to API clients.
const (
	CodeUnauthenticated    = "unauthenticated"
	CodePermissionDenied   = "permission-denied"
	CodeInvalidArgument    = "invalid-argument"
	CodeNotFound           = "not-found"
	CodeFailedPrecondition = "failed-precondition"
	CodeInternal           = "internal"
)

// CodeOf maps an error chain to the callable error taxonomy.
// Anything that is not a known domain error is reported as internal.
func CodeOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, ErrForbidden):
		return CodePermissionDenied
	case errors.Is(err, ErrValidation), errors.Is(err, ErrSelfPayment):
		return CodeInvalidArgument
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrConflict):
		return CodeFailedPrecondition
	default:
		return CodeInternal
	}
}

// HTTPStatus maps an error chain to the HTTP status used at the API boundary.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case "":
		return http.StatusOK
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeFailedPrecondition:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text that may be shown to an end user.
// Internal failures are reduced to a generic message.
func PublicMessage(err error) string {
	if CodeOf(err) == CodeInternal {
		return "An internal error occurred. Please try again later."
	}
	return err.Error()
}
