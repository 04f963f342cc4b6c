// Package apperr defines the error kinds surfaced by the HTTP API.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeUnauthorized         Code = "UNAUTHORIZED"
	CodeForbidden            Code = "FORBIDDEN"
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeInvalidParams        Code = "INVALID_PARAMS"
	CodeNotFound             Code = "NOT_FOUND"
	CodeAgencyAlreadyClaimed Code = "AGENCY_ALREADY_CLAIMED"
	CodePendingClaimExists   Code = "PENDING_CLAIM_EXISTS"
	CodeClaimAlreadyResolved Code = "CLAIM_ALREADY_RESOLVED"
	CodeRateLimited          Code = "RATE_LIMITED"
	CodeDatabase             Code = "DATABASE_ERROR"
	CodeStorage              Code = "STORAGE_ERROR"
	CodeInternal             Code = "INTERNAL_ERROR"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Code    Code
	Message string
	Details []FieldError
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Internal reports whether the error hides its cause from the caller.
func (e *Error) Internal() bool {
	return e.Status >= http.StatusInternalServerError
}

func New(code Code, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, http.StatusForbidden, message)
}

func Validation(message string, details ...FieldError) *Error {
	e := New(CodeValidation, http.StatusBadRequest, message)
	e.Details = details
	return e
}

func InvalidParams(message string, details ...FieldError) *Error {
	e := New(CodeInvalidParams, http.StatusBadRequest, message)
	e.Details = details
	return e
}

// Conflict is a duplicate-resource failure. It keeps the VALIDATION_ERROR code
// clients already branch on, with a 409 status.
func Conflict(message string, details ...FieldError) *Error {
	e := New(CodeValidation, http.StatusConflict, message)
	e.Details = details
	return e
}

func NotFound(what string) *Error {
	return New(CodeNotFound, http.StatusNotFound, what+" not found")
}

func AgencyAlreadyClaimed() *Error {
	return New(CodeAgencyAlreadyClaimed, http.StatusConflict, "this agency has already been claimed")
}

func PendingClaimExists() *Error {
	return New(CodePendingClaimExists, http.StatusConflict, "you already have a pending claim for this agency")
}

func ClaimAlreadyResolved(status string) *Error {
	return New(CodeClaimAlreadyResolved, http.StatusConflict, "claim request is already "+status)
}

func RateLimited() *Error {
	return New(CodeRateLimited, http.StatusTooManyRequests, "rate limit exceeded")
}

func Database(err error) *Error {
	return &Error{Code: CodeDatabase, Status: http.StatusInternalServerError, Message: "a database error occurred", Err: err}
}

func Storage(err error) *Error {
	return &Error{Code: CodeStorage, Status: http.StatusBadGateway, Message: "document storage is unavailable", Err: err}
}

func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Status: http.StatusInternalServerError, Message: "an unexpected error occurred", Err: err}
}

// From returns err as an *Error, treating anything unclassified as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
