// Package apperror defines the machine readable error codes returned by the
// API and maps storage errors onto them.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Code is a machine readable error category
type Code string

const (
	CodeValidation        Code = "VALIDATION"
	CodeNotFound          Code = "NOT_FOUND"
	CodeReferenceNotFound Code = "REFERENCE_NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeRateLimited       Code = "RATE_LIMITED"
	CodeStorage           Code = "STORAGE"
	CodeInternal          Code = "INTERNAL"
)

// Error is an error carrying a Code and a user facing message
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error with the given code and formatted message
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error
func Wrap(code Code, err error, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NotFound(entity string, id interface{}) *Error {
	return New(CodeNotFound, "%s %v not found", entity, id)
}

func ReferenceNotFound(entity string, id interface{}) *Error {
	return New(CodeReferenceNotFound, "referenced %s %v does not exist", entity, id)
}

func Validation(format string, args ...interface{}) *Error {
	return New(CodeValidation, format, args...)
}

// ValidationFields builds a validation error listing the offending fields
func ValidationFields(fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: "invalid request payload", Fields: fields}
}

func Conflict(format string, args ...interface{}) *Error {
	return New(CodeConflict, format, args...)
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, "%s", message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, "%s", message)
}

// CodeOf returns the Code of err, or CodeInternal when err carries none
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps a Code to the HTTP status used in responses
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeReferenceNotFound:
		return http.StatusUnprocessableEntity
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Classify converts a raw storage error into an *Error. Errors that already
// carry a code are returned unchanged; nil stays nil.
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Wrap(CodeNotFound, err, message)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return Wrap(CodeConflict, err, message)
	case errors.Is(err, gorm.ErrForeignKeyViolated), isForeignKeyViolation(err):
		return Wrap(CodeReferenceNotFound, err, message)
	case IsBusy(err):
		return Wrap(CodeStorage, err, message)
	}
	return Wrap(CodeInternal, err, message)
}

// IsBusy reports whether err is SQLite's "database is locked"/busy condition
func IsBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLSTATE 23505")
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") || strings.Contains(msg, "SQLSTATE 23503")
}
