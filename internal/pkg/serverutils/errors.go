package serverutils

import (
	"fmt"
	"net/http"
)

// AppError carries an HTTP status through the service layer.
type AppError struct {
	Code    int
	Message string
	Fields  map[string]string
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

func newAppError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NewBadRequest(message string) *AppError   { return newAppError(http.StatusBadRequest, message) }
func NewUnauthorized(message string) *AppError { return newAppError(http.StatusUnauthorized, message) }
func NewForbidden(message string) *AppError    { return newAppError(http.StatusForbidden, message) }
func NewNotFound(message string) *AppError     { return newAppError(http.StatusNotFound, message) }
func NewConflict(message string) *AppError     { return newAppError(http.StatusConflict, message) }
func NewPaymentRequired(message string) *AppError {
	return newAppError(http.StatusPaymentRequired, message)
}
func NewTooLarge(message string) *AppError { return newAppError(http.StatusRequestEntityTooLarge, message) }
func NewUnsupportedMedia(message string) *AppError {
	return newAppError(http.StatusUnsupportedMediaType, message)
}
func NewUnavailable(message string) *AppError {
	return newAppError(http.StatusServiceUnavailable, message)
}

// NewInternal keeps the cause for logging; the client only sees message.
func NewInternal(message string, err error) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message, Err: err}
}
