package entity

import "errors"

const (
	// SourceEntity is the source reported by entity errors.
	SourceEntity = "entity"

	CodeNotFound = "not_found"
	CodeInvalid  = "invalid"
)

// Error is the error type raised by the data layers.
type Error struct {
	Source  string
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error with the same source and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Source == t.Source && e.Code == t.Code
}

// ErrEntityDoesNotExist is returned when a lookup matches no row.
var ErrEntityDoesNotExist = &Error{
	Source:  SourceEntity,
	Code:    CodeNotFound,
	Message: "entity not found",
}

// ErrInvalidEntity matches every error built with NewInvalidEntity.
var ErrInvalidEntity = &Error{
	Source:  SourceEntity,
	Code:    CodeInvalid,
	Message: "invalid entity",
}

// NewInvalidEntity returns an invalid entity error with a custom message.
func NewInvalidEntity(message string) error {
	return &Error{Source: SourceEntity, Code: CodeInvalid, Message: message}
}

// IsNotFound reports whether err is, or wraps, ErrEntityDoesNotExist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntityDoesNotExist)
}
