// Package apperror defines the typed errors services return to handlers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is implemented by every error a handler can translate directly into a response.
type AppError interface {
	Error() string
	Category() string
	HTTPStatus() int
	Unwrap() error
}

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string    { return e.Msg }
func (e *ValidationError) Category() string { return "VALIDATION_ERROR" }
func (e *ValidationError) HTTPStatus() int  { return http.StatusBadRequest }
func (e *ValidationError) Unwrap() error    { return nil }

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

// NotFoundError covers both absent resources and resources owned by someone else.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string    { return e.Msg }
func (e *NotFoundError) Category() string { return "NOT_FOUND" }
func (e *NotFoundError) HTTPStatus() int  { return http.StatusNotFound }
func (e *NotFoundError) Unwrap() error    { return nil }

func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{Msg: msg}
}

// ConflictError reports a duplicate value for a unique field.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string    { return e.Msg }
func (e *ConflictError) Category() string { return "CONFLICT" }
func (e *ConflictError) HTTPStatus() int  { return http.StatusConflict }
func (e *ConflictError) Unwrap() error    { return nil }

func NewConflictError(msg string) *ConflictError {
	return &ConflictError{Msg: msg}
}

type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string    { return e.Msg }
func (e *UnauthorizedError) Category() string { return "UNAUTHORIZED" }
func (e *UnauthorizedError) HTTPStatus() int  { return http.StatusUnauthorized }
func (e *UnauthorizedError) Unwrap() error    { return nil }

func NewUnauthorizedError(msg string) *UnauthorizedError {
	return &UnauthorizedError{Msg: msg}
}

// InternalError wraps a persistence or unexpected failure. Its cause is for logs only.
type InternalError struct {
	Msg string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}
func (e *InternalError) Category() string { return "INTERNAL_ERROR" }
func (e *InternalError) HTTPStatus() int  { return http.StatusInternalServerError }
func (e *InternalError) Unwrap() error    { return e.Err }

func NewInternalError(msg string, err error) *InternalError {
	return &InternalError{Msg: msg, Err: err}
}

const genericMessage = "Internal server error"

// MapToHTTPStatus translates err into a status code, a category and a message safe to show clients.
func MapToHTTPStatus(err error) (int, string, string) {
	var appErr AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, "UNKNOWN_ERROR", genericMessage
	}
	if appErr.HTTPStatus() >= http.StatusInternalServerError {
		return appErr.HTTPStatus(), appErr.Category(), genericMessage
	}
	return appErr.HTTPStatus(), appErr.Category(), appErr.Error()
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target *InternalError
	return errors.As(err, &target)
}
