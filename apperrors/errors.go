// Package apperrors defines the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindForbidden
	KindInvalidArgument
	KindNotFound
	KindConflict
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind onto its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to callers; Err is
// the underlying cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind and message, so sentinels work
// with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

var (
	ErrUnauthorized         = New(KindUnauthorized, "Unauthorized")
	ErrInvalidCredentials   = New(KindUnauthorized, "Invalid credentials")
	ErrForbidden            = New(KindForbidden, "Forbidden")
	ErrEmptyContent         = New(KindInvalidArgument, "Message content is required")
	ErrMissingTarget        = New(KindInvalidArgument, "Either conversationId or recipientId is required")
	ErrInvalidID            = New(KindInvalidArgument, "Invalid id")
	ErrSenderNotFound       = New(KindNotFound, "Sender not found")
	ErrRecipientNotFound    = New(KindNotFound, "Recipient not found")
	ErrConversationNotFound = New(KindNotFound, "Conversation not found")
	ErrUserNotFound         = New(KindNotFound, "User not found")
	ErrNotFound             = New(KindNotFound, "Not found")
	ErrUserExists           = New(KindConflict, "User already exists")
	ErrUploadsDisabled      = New(KindUnavailable, "Uploads are not configured")
)

// KindOf reports the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the caller-facing text for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Internal server error"
}

func Invalid(message string) *Error {
	return New(KindInvalidArgument, message)
}

func NotFound(what string) *Error {
	return New(KindNotFound, what+" not found")
}
