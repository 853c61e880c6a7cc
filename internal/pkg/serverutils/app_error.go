package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error taxonomy surfaced to clients. Validation and Conflict are recovered
// locally with a retry prompt; NotFound is terminal for the failing call;
// Timeout and Internal are retryable without exposing detail.
const (
	CodeValidation = "VALIDATION"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeTimeout    = "TIMEOUT"
	CodeInternal   = "INTERNAL"
)

type AppError struct {
	Code      string
	Status    int
	Message   string
	Retryable bool
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Status: fiber.StatusBadRequest, Message: message, Retryable: true}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Status: fiber.StatusNotFound, Message: message, Retryable: false}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Status: fiber.StatusConflict, Message: message, Retryable: true}
}

// NewTerminalStateError rejects turns on a COMPLETED or ABANDONED session.
// Not retryable: the client must start a new session.
func NewTerminalStateError(message string) *AppError {
	return &AppError{Code: CodeConflict, Status: fiber.StatusConflict, Message: message, Retryable: false}
}

func NewTimeoutError(message string, err error) *AppError {
	return &AppError{Code: CodeTimeout, Status: fiber.StatusGatewayTimeout, Message: message, Retryable: true, Err: err}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Status: fiber.StatusInternalServerError, Message: "Something went wrong, please try again", Retryable: true, Err: err}
}

// AsAppError returns the typed error if err is (or wraps) one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
