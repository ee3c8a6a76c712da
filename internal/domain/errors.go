package domain

import "errors"

var (
	// ErrUnauthorized is returned when the requester's role does not allow the operation.
	ErrUnauthorized = errors.New("operation not allowed for this role")
	// ErrValidation indicates a payload that could not be coerced into a usable value.
	ErrValidation = errors.New("invalid payload")
	// ErrConflict is returned when a question is asked while another is still being answered.
	ErrConflict = errors.New("a question is still being answered")
	// ErrNotFound indicates there is no open question to act on.
	ErrNotFound = errors.New("no open question")
	// ErrKicked is returned when a kicked identity tries to connect or register.
	ErrKicked = errors.New("user has been removed from the session")
)
