package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Every *Error unwraps to exactly one of these.
var (
	ErrValidation       = errors.New("validation failed")
	ErrPermission       = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrAlreadyCompleted = errors.New("already completed")
	ErrConflict         = errors.New("conflict")
	ErrUnauthenticated  = errors.New("unauthenticated")
)

// Error is a business rule failure. Field names the offending input, if any.
type Error struct {
	Kind    error
	Field   string
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func validationError(field, message string) *Error {
	return &Error{Kind: ErrValidation, Field: field, Message: message}
}

func conflictError(field, message string) *Error {
	return &Error{Kind: ErrConflict, Field: field, Message: message}
}

func notFoundError(resource string) *Error {
	return &Error{Kind: ErrNotFound, Message: resource + " not found"}
}

func permissionError(message string) *Error {
	return &Error{Kind: ErrPermission, Message: message}
}

func alreadyCompletedError(message string) *Error {
	return &Error{Kind: ErrAlreadyCompleted, Message: message}
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicateKey reports a unique constraint violation, which a concurrent
// writer can cause after an existence check passed.
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
