// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// AppError is an error that knows how it should be rendered to a client.
type AppError struct {
	Err     error
	Message string
	Status  int
	Code    string
	Details []string
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

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Status:  status,
		Code:    code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func ValidationError(details []string) *AppError {
	message := "validation failed"
	if len(details) == 1 {
		message = details[0]
	}
	return &AppError{
		Err:     ErrInvalidInput,
		Message: message,
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Details: details,
	}
}

// ConflictError reports duplicate usernames/emails. The admin console has
// always answered these with 400 rather than 409.
func ConflictError(details []string) *AppError {
	message := "duplicate value"
	if len(details) == 1 {
		message = details[0]
	}
	return &AppError{
		Err:     ErrDuplicateKey,
		Message: message,
		Status:  http.StatusBadRequest,
		Code:    "DUPLICATE",
		Details: details,
	}
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrNotFound, message, http.StatusNotFound, "NOT_FOUND")
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(
		ErrUnauthorized,
		message,
		http.StatusUnauthorized,
		"UNAUTHORIZED",
	)
}

func MissingTokenError() *AppError {
	return NewAppError(
		ErrUnauthorized,
		"Access denied, token missing",
		http.StatusUnauthorized,
		"MISSING_TOKEN",
	)
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "insufficient permissions"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func TokenExpiredError() *AppError {
	return NewAppError(
		ErrTokenExpired,
		"Token expired",
		http.StatusUnauthorized,
		"TOKEN_EXPIRED",
	)
}

func TokenInvalidError() *AppError {
	return NewAppError(
		ErrTokenInvalid,
		"Invalid token",
		http.StatusUnauthorized,
		"TOKEN_INVALID",
	)
}
