// Package apperror defines the closed set of failure kinds surfaced by the API.
package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Kind int

const (
	// Unexpected is the zero value so that untagged errors map to a 500.
	Unexpected Kind = iota
	Validation
	Unauthenticated
	AccessDenied
	NotFound
)

// String returns the machine readable code rendered in the "error" field.
func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation_error"
	case Unauthenticated:
		return "unauthorized"
	case AccessDenied:
		return "forbidden"
	case NotFound:
		return "not_found"
	default:
		return "internal_error"
	}
}

func (k Kind) HTTPStatus() int {
	switch k {
	case Validation:
		return fiber.StatusBadRequest
	case Unauthenticated:
		return fiber.StatusUnauthorized
	case AccessDenied:
		return fiber.StatusForbidden
	case NotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewValidation(message string) *Error      { return New(Validation, message) }
func NewUnauthenticated(message string) *Error { return New(Unauthenticated, message) }
func NewAccessDenied(message string) *Error    { return New(AccessDenied, message) }
func NewNotFound(message string) *Error        { return New(NotFound, message) }

func NewUnexpected(message string, err error) *Error {
	return Wrap(Unexpected, message, err)
}

// KindOf reports the kind of err. Errors not carrying a Kind are Unexpected.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the client facing message. Unexpected errors get a generic text.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != Unexpected {
		return appErr.Message
	}
	return "An unexpected error occurred"
}

// FromStore translates a repository error. Missing records become NotFound with
// the given message, everything else is Unexpected.
func FromStore(err error, notFoundMessage string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(NotFound, notFoundMessage, err)
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return NewUnexpected("database error", err)
}
