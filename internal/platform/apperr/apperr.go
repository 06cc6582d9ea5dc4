// Package apperr defines the error kinds surfaced by the domain services and
// their mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not found")
	ErrProtected   = errors.New("protected entity")
	ErrTransaction = errors.New("transaction failure")
)

// Error carries a human-readable message, its kind and an optional cause.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(kind error, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func Validation(format string, args ...interface{}) error {
	return newError(ErrValidation, nil, format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newError(ErrConflict, nil, format, args...)
}

func NotFound(format string, args ...interface{}) error {
	return newError(ErrNotFound, nil, format, args...)
}

func Protected(format string, args ...interface{}) error {
	return newError(ErrProtected, nil, format, args...)
}

// Transaction wraps a lower-level persistence failure.
func Transaction(cause error, format string, args ...interface{}) error {
	return newError(ErrTransaction, cause, format, args...)
}

// HTTPStatus maps an error kind onto a status code; unknown errors are 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrProtected):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP converts err into an *echo.HTTPError. Internal failures are not
// echoed back to the client verbatim.
func ToHTTP(err error) *echo.HTTPError {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		var appErr *Error
		if errors.As(err, &appErr) {
			return echo.NewHTTPError(status, appErr.Message).SetInternal(err)
		}
		return echo.NewHTTPError(status, "internal server error").SetInternal(err)
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return echo.NewHTTPError(status, appErr.Message)
	}
	return echo.NewHTTPError(status, err.Error())
}
