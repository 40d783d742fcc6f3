package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Code is a machine-readable error category
type Code string

const (
	CodeValidation    Code = "VALIDATION_FAILED"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeEmailNotVerif Code = "EMAIL_NOT_VERIFIED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeSlotFull      Code = "SLOT_UNAVAILABLE"
	CodeInvalidStatus Code = "INVALID_STATUS"
	CodeExternal      Code = "EXTERNAL_SERVICE_ERROR"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// AppError is an error that knows how it should be reported over HTTP
type AppError struct {
	Code     Code        `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	HTTPCode int         `json:"-"`
	Err      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails attaches structured details to the error
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// New creates an AppError
func New(code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

// Wrap creates an AppError around an underlying cause
func Wrap(err error, code Code, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode, Err: err}
}

func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func EmailNotVerified() *AppError {
	return New(CodeEmailNotVerif, "Please verify your email address before logging in", http.StatusForbidden)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func NotFound(what string) *AppError {
	return New(CodeNotFound, what+" not found", http.StatusNotFound)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func SlotUnavailable(slot string) *AppError {
	return New(CodeSlotFull, fmt.Sprintf("The %s slot is no longer available", slot), http.StatusConflict)
}

func InvalidStatus(err error) *AppError {
	return Wrap(err, CodeInvalidStatus, err.Error(), http.StatusConflict)
}

func External(service string, err error) *AppError {
	return Wrap(err, CodeExternal, service+" request failed", http.StatusBadGateway)
}

func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "Internal server error", http.StatusInternalServerError)
}

// As extracts an *AppError from err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is gorm's record-not-found
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsUniqueViolation reports whether err is a Postgres unique constraint violation
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// FromDB maps repository errors onto the taxonomy
func FromDB(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case IsNotFound(err):
		return NotFound(what)
	case IsUniqueViolation(err):
		return Wrap(err, CodeConflict, what+" already exists", http.StatusConflict)
	default:
		return Internal(err)
	}
}
