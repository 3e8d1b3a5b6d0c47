package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for the client-facing error event and for
// routing decisions inside the gateway.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "AUTHENTICATION"
	KindAuthorization  ErrorKind = "AUTHORIZATION"
	KindValidation     ErrorKind = "VALIDATION"
	KindUnavailable    ErrorKind = "UNAVAILABLE"
	KindNotFound       ErrorKind = "NOT_FOUND"
)

// Error carries a kind alongside the message so the gateway can report a
// structured error event without string matching.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, domain.ErrUnavailable)
// style checks work on wrapped instances.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func AuthenticationError(format string, args ...any) *Error {
	return &Error{Kind: KindAuthentication, Message: fmt.Sprintf(format, args...)}
}

func AuthorizationError(format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// UnavailableError wraps a collaborator failure (presence store, account
// oracle, persistent store). Callers treat it as transient and must never let
// it take down the gateway.
func UnavailableError(err error, msg string) *Error {
	return &Error{Kind: KindUnavailable, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindUnavailable for untyped failures,
// which keeps unknown infrastructure errors on the recoverable path.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnavailable
}

// Kind-only sentinels for errors.Is checks.
var (
	ErrUnauthenticated = &Error{Kind: KindAuthentication}
	ErrUnauthorized    = &Error{Kind: KindAuthorization}
	ErrInvalid         = &Error{Kind: KindValidation}
	ErrUnavailable     = &Error{Kind: KindUnavailable}
	ErrNotFound        = &Error{Kind: KindNotFound}
)

var (
	ErrChatNotFound    = NotFoundError("chat not found")
	ErrMessageNotFound = NotFoundError("message not found")
	ErrNotParticipant  = AuthorizationError("you are not a participant of this chat")
)
