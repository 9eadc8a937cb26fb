package application

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrInvalid        = errors.New("invalid input")
	ErrInfrastructure = errors.New("infrastructure failure")
)

// Error is returned by every Service operation that fails.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (caused by: %v)", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newUserNotFoundError(id int64) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("User not found by ID: %d", id)}
}

func newEmailExistsError(cause error) *Error {
	return &Error{Kind: ErrConflict, Message: "Email already exists.", Cause: cause}
}

func newInvalidError(message string) *Error {
	return &Error{Kind: ErrInvalid, Message: message}
}

func newInfrastructureError(op string, cause error) *Error {
	return &Error{Kind: ErrInfrastructure, Message: op + " failed", Cause: cause}
}
