package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrValidation        ErrorType = "VALIDATION_ERROR"
	ErrPhaseViolation    ErrorType = "PHASE_VIOLATION"
	ErrInsufficientFunds ErrorType = "INSUFFICIENT_FUNDS"
	ErrAuthFailed        ErrorType = "AUTH_FAILED"
	ErrPersistence       ErrorType = "PERSISTENCE_FAILURE"
	ErrOperationalReject ErrorType = "OPERATIONAL_REJECT"
	ErrUnsupportedAction ErrorType = "UNSUPPORTED_ACTION"
	ErrNotFound          ErrorType = "NOT_FOUND"
	ErrInternal          ErrorType = "INTERNAL_ERROR"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
	}
}

func NewValidation(msg string) *AppError {
	return New(ErrValidation, msg, nil)
}

func NewPhaseViolation(msg string) *AppError {
	return New(ErrPhaseViolation, msg, nil)
}

func NewOperationalReject(msg string) *AppError {
	return New(ErrOperationalReject, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrValidation, ErrUnsupportedAction:
		return http.StatusBadRequest
	case ErrPhaseViolation, ErrInsufficientFunds, ErrOperationalReject:
		return http.StatusConflict
	case ErrAuthFailed:
		return http.StatusUnauthorized
	case ErrNotFound:
		return http.StatusNotFound
	case ErrPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
