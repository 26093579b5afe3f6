package repository

import "errors"

// Common repository errors, shared by every store backend.
var (
	// ErrTaskNotFound is returned when a task does not exist or belongs to another user
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound is returned when a user lookup matches nothing
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when a user with the same email already exists
	ErrEmailTaken = errors.New("email already registered")
)
