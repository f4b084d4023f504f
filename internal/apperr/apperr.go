package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so callers can tell "you don't own this"
// apart from "it doesn't exist" and "you forgot a field".
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindForbidden
	KindAuthentication
	KindStorage
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.kindString(), e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.kindString(), e.Message)
}

// Unwrap allows errors.Is and errors.As to work.
func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) kindString() string {
	switch e.Kind {
	case KindValidation:
		return "ValidationError"
	case KindNotFound:
		return "NotFoundError"
	case KindForbidden:
		return "ForbiddenError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindStorage:
		return "StorageError"
	default:
		return "UnknownError"
	}
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func Authentication(msg string) error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

// Storage wraps an underlying persistence failure.
func Storage(msg string, err error) error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// KindOf reports the kind of err, if it carries one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func IsValidation(err error) bool     { return hasKind(err, KindValidation) }
func IsNotFound(err error) bool       { return hasKind(err, KindNotFound) }
func IsForbidden(err error) bool      { return hasKind(err, KindForbidden) }
func IsAuthentication(err error) bool { return hasKind(err, KindAuthentication) }
func IsStorage(err error) bool        { return hasKind(err, KindStorage) }

func hasKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// HTTPStatus maps an error to the status code controllers should respond with.
// Errors without a kind are treated as internal failures.
func HTTPStatus(err error) int {
	switch k, ok := KindOf(err); {
	case !ok:
		return http.StatusInternalServerError
	case k == KindValidation:
		return http.StatusBadRequest
	case k == KindNotFound:
		return http.StatusNotFound
	case k == KindForbidden:
		return http.StatusForbidden
	case k == KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the message to expose to API clients.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
