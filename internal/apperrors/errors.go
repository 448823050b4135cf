package apperrors

import (
	"errors"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the request conflicts with the current state of a resource.
var ErrConflict = errors.New("resource conflict")

// ErrInternal indicates an unexpected failure in a lower layer.
var ErrInternal = errors.New("internal error")

// AppError carries an HTTP-ish status code and a message alongside the cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped cause so errors.Is/As see through AppError.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error's code.
func (e *AppError) Is(target error) bool {
	switch e.Code {
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusBadRequest:
		return target == ErrValidation
	case http.StatusConflict:
		return target == ErrConflict
	case http.StatusInternalServerError:
		return target == ErrInternal
	}
	return false
}

// NewAppError creates an AppError with the given code, message and cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates a 404 AppError.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

// NewValidationFailedError creates a 400 AppError.
func NewValidationFailedError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// NewConflictError creates a 409 AppError.
func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, Err: ErrConflict}
}

// NewDuplicateError creates a 409 AppError for unique constraint violations.
func NewDuplicateError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, Err: ErrDuplicate}
}

// StatusCode maps an error to the HTTP status it should be reported with.
func StatusCode(err error) int {
	var appErr *AppError
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.As(err, &appErr) && appErr.Code != 0:
		return appErr.Code
	}
	return http.StatusInternalServerError
}
