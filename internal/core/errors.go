// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate limited")
	ErrTransport    = errors.New("transport failure")

	ErrSessionInvalid = errors.New("session invalid")
	ErrSessionExpired = errors.New("session expired")
)

type AppError struct {
	Err     error
	Message string
	Status  int
	Code    string
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

func ValidationError(message string) *AppError {
	return NewAppError(nil, message, http.StatusBadRequest, "VALIDATION_FAILED")
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

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func SessionInvalidError() *AppError {
	return NewAppError(
		ErrSessionInvalid,
		"invalid session",
		http.StatusUnauthorized,
		"SESSION_INVALID",
	)
}

func SessionExpiredError() *AppError {
	return NewAppError(
		ErrSessionExpired,
		"session expired",
		http.StatusUnauthorized,
		"SESSION_EXPIRED",
	)
}

// RateLimitError carries the remaining wait so callers can report
// "Please wait 9m 41s before resending".
type RateLimitError struct {
	*AppError
	RetryAfter time.Duration
}

func NewRateLimitError(message string, retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{
		AppError: NewAppError(
			ErrRateLimited,
			message,
			http.StatusTooManyRequests,
			"RATE_LIMITED",
		),
		RetryAfter: retryAfter,
	}
}
